package focus

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// compositorScript is the source materialized into the runtime directory and
// loaded into the compositor's own scripting engine. It watches window
// activation and calls back into our exported D-Bus method on every change.
// The %s placeholders are the D-Bus well-known name and object path.
const compositorScript = `
const { Gio } = imports.gi;

function notifyFocus(win) {
    if (!win) return;
    try {
        const proxy = Gio.DBusProxy.makeProxyWrapper(
            '<node><interface name="%[1]s"><method name="Update"><arg type="s" direction="in"/><arg type="s" direction="in"/><arg type="s" direction="in"/></method></interface></node>'
        )(Gio.DBus.session, '%[1]s', '%[2]s');
        proxy.UpdateSync(
            win.get_gtk_application_id() || '',
            win.get_wm_class_instance() || '',
            win.get_wm_class() || ''
        );
    } catch (e) {
        logError(e, 'pcpaneld focus script');
    }
}

global.display.connect('notify::focus-window', () => {
    notifyFocus(global.display.focus_window);
});
`

// loader runs the compositor's own CLI entrypoint to evaluate a script file,
// and its counterpart to unload it. Abstracted so tests can substitute a
// fake without shelling out to a real compositor.
type loader interface {
	load(ctx scriptPaths) error
	unload(ctx scriptPaths) error
}

type scriptPaths struct {
	path       string
	busName    string
	objectPath string
}

// gjsLoader shells out to the compositor's scripting entrypoint, treated as
// an opaque external collaborator (spec names gjs/the compositor's own `-c`
// eval command as the concrete mechanism).
type gjsLoader struct {
	evalCommand string // e.g. "gjs" or a compositor-specific wrapper
}

func (g gjsLoader) load(p scriptPaths) error {
	cmd := exec.Command(g.evalCommand, p.path)
	return cmd.Run()
}

func (g gjsLoader) unload(p scriptPaths) error {
	// Unloading a one-shot eval script means nothing further to tear down on
	// the compositor side beyond removing the file; kept as a distinct step
	// so a future compositor backend with an explicit unload call has a home.
	return nil
}

func materializeScript(dir, busName, objectPath string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("materialize script dir: %w", err)
	}
	path := filepath.Join(dir, "pcpaneld-focus.js")
	content := fmt.Sprintf(compositorScript, busName, objectPath)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write focus script: %w", err)
	}
	return path, nil
}
