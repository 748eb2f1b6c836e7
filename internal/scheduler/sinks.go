package scheduler

// Signal is the audible/visual alert the engine starts when an alarm is
// raised and stops on dismiss or snooze.
type Signal interface {
	Play(ringtone string, volume float64) error
	Stop() error
}

// Notifier delivers a best-effort system notification.
type Notifier interface {
	Notify(title, body string) error
}

type NoopSignal struct{}

func (NoopSignal) Play(string, float64) error { return nil }
func (NoopSignal) Stop() error                { return nil }

type NoopNotifier struct{}

func (NoopNotifier) Notify(string, string) error { return nil }
