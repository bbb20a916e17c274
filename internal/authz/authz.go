package authz

// Role is a named category of platform user.
type Role string

// The closed role set. Tokens carrying anything else are rejected at issuance.
const (
	RoleFarmer            Role = "Farmer"
	RoleBuyer             Role = "Buyer"
	RoleCooperative       Role = "Cooperative"
	RoleGovernmentOfficer Role = "GovernmentOfficer"
	RoleAdmin             Role = "Admin"
)

// Permission is a named capability required to hit a protected endpoint.
type Permission string

const (
	PermAIAdvice           Permission = "AI_ADVICE"
	PermGreenhouse         Permission = "GREENHOUSE"
	PermMarketAnalysis     Permission = "MARKET_ANALYSIS"
	PermBusinessAssessment Permission = "BUSINESS_ASSESSMENT"
	PermCarbonAnalytics    Permission = "CARBON_ANALYTICS"
	PermVerifyFarmer       Permission = "VERIFY_FARMER"

	// PermAll grants every action, present and future.
	PermAll Permission = "*"
)

// RoleConfig declares one role's place in the hierarchy: the roles it
// inherits from and the permissions granted directly to it.
type RoleConfig struct {
	Parents []Role
	Grants  []Permission
}

// DefaultConfig is the platform's role table. Cooperatives bundle the
// farmer and buyer capabilities for their members; government officers
// get the regulatory actions; Admin gets the wildcard.
func DefaultConfig() map[Role]RoleConfig {
	return map[Role]RoleConfig{
		RoleFarmer: {
			Grants: []Permission{PermAIAdvice, PermGreenhouse},
		},
		RoleBuyer: {
			Grants: []Permission{PermMarketAnalysis, PermBusinessAssessment},
		},
		RoleCooperative: {
			Parents: []Role{RoleFarmer, RoleBuyer},
			Grants:  []Permission{PermCarbonAnalytics},
		},
		RoleGovernmentOfficer: {
			Grants: []Permission{PermCarbonAnalytics, PermVerifyFarmer},
		},
		RoleAdmin: {
			Grants: []Permission{PermAll},
		},
	}
}
