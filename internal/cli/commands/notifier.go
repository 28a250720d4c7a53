package commands

import "github.com/gen2brain/beeep"

// desktopNotifier показывает системные уведомления.
type desktopNotifier struct{}

func (desktopNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}
