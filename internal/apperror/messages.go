package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidAddress:  "Invalid address",
	CodeInvalidAmount:   "Invalid amount",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Connectivity / RPC errors
	CodeConnectivityError: "All RPC endpoints unreachable",
	CodeChainIDMismatch:   "Endpoint reported an unexpected chain id",
	CodeRPCError:          "RPC call failed",
	CodeSignerError:       "Signing identity error",

	// Transfer engine errors
	CodeInsufficientFunds:  "Resolved amount is below the dust threshold",
	CodeSubmissionRejected: "Transaction rejected before inclusion",
	CodeMinedReverted:      "Transaction mined but reverted",
	CodeConfirmTimeout:     "Confirmation wait timed out",
	CodeNonceDesync:        "Local nonce diverged from chain state",
	CodeFeeEstimateFailed:  "Fee data unavailable",

	// Withdrawal variant errors
	CodeUnknownVariant:    "Unknown withdrawal variant",
	CodeBalanceDivergence: "Balance cross-validation diverged",
	CodePostCheckFailed:   "Post-transfer balance check failed",
	CodeGateDeclined:      "Withdrawal declined by approval gate",
	CodeApprovalError:     "Approval service unavailable",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
