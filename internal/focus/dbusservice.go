package focus

import (
	"github.com/godbus/dbus/v5"

	"pcpaneld/internal/apperr"
	"pcpaneld/internal/model"
)

const (
	busName    = "com.pcpaneld.FocusedWindow"
	objectPath = "/com/pcpaneld/FocusedWindow"
)

// focusObject is exported on the session bus; the compositor script calls
// its Update method on every window-activation event.
type focusObject struct {
	updates chan<- model.FocusedWindow
}

// Update is the exported D-Bus method. It never blocks: the updates channel
// is latest-wins, so a full channel just means a fresher update is already
// queued behind it.
func (f *focusObject) Update(desktopFile, resourceName, resourceClass string) *dbus.Error {
	win := model.FocusedWindow{
		DesktopFile:   desktopFile,
		ResourceName:  resourceName,
		ResourceClass: resourceClass,
	}
	select {
	case f.updates <- win:
	default:
		select {
		case <-f.updates:
		default:
		}
		select {
		case f.updates <- win:
		default:
		}
	}
	return nil
}

func exportService(conn *dbus.Conn, updates chan<- model.FocusedWindow) error {
	obj := &focusObject{updates: updates}
	if err := conn.Export(obj, dbus.ObjectPath(objectPath), busName); err != nil {
		return err
	}
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return apperr.FocusTrackerUnavailable{Reason: "bus name " + busName + " already owned"}
	}
	return nil
}
