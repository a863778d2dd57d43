package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidAddress  Code = "INVALID_ADDRESS"
	CodeInvalidAmount   Code = "INVALID_AMOUNT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Treasury-specific error codes
const (
	// Connectivity / RPC errors
	CodeConnectivityError Code = "CONNECTIVITY_ERROR"
	CodeChainIDMismatch   Code = "CHAIN_ID_MISMATCH"
	CodeRPCError          Code = "RPC_ERROR"
	CodeSignerError       Code = "SIGNER_ERROR"

	// Transfer engine errors
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"
	CodeSubmissionRejected Code = "SUBMISSION_REJECTED"
	CodeMinedReverted      Code = "MINED_REVERTED"
	CodeConfirmTimeout     Code = "CONFIRM_TIMEOUT"
	CodeNonceDesync        Code = "NONCE_DESYNC"
	CodeFeeEstimateFailed  Code = "FEE_ESTIMATE_FAILED"

	// Withdrawal variant errors
	CodeUnknownVariant    Code = "UNKNOWN_VARIANT"
	CodeBalanceDivergence Code = "BALANCE_DIVERGENCE"
	CodePostCheckFailed   Code = "POST_CHECK_FAILED"
	CodeGateDeclined      Code = "GATE_DECLINED"
	CodeApprovalError     Code = "APPROVAL_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
