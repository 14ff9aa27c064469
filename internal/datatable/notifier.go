package datatable

// Level is the severity of a toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the string representation of a Level.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Toast is a user-visible notification raised by the table.
type Toast struct {
	Level   Level
	Title   string
	Message string
}

// Notifier receives toasts. Hosts supply one; the table never reaches for a
// global notification store.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Toast)

// Notify calls f(t).
func (f NotifierFunc) Notify(t Toast) {
	f(t)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Toast) {}
