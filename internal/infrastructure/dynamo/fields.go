package dynamo

// DynamoDB attribute names used in keys and expressions across all repos.
const (
	fieldUserID        = "user_id"
	fieldRoleID        = "role_id"
	fieldEmail         = "email"
	fieldPasswordHash  = "password_hash"
	fieldUpdatedAt     = "updated_at"
	fieldID            = "id"
	fieldCode          = "code"
	fieldUsed          = "used"
	fieldExpiresAt     = "expires_at"
	fieldVerifiedAt    = "verified_at"
	fieldExchangeToken = "exchange_token"
	fieldPurgeAt       = "purge_at"
)
