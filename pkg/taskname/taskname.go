package taskname

const (
	// Email tasks
	EmailReceipt       = "email:receipt"
	EmailWelcome       = "email:welcome"
	EmailPasswordReset = "email:password_reset"
)
