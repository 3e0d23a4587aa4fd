package port

// Notifier surfaces transient notifications to the user. Failures during
// augmentation are reported here and never propagated to the host.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
}
