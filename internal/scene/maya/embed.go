package maya

import (
	_ "embed"
	"fmt"
)

//go:embed listener.py
var listenerScript string

// ListenerScript returns the Python command listener that must run inside
// Maya for a session to connect.
func ListenerScript() string { return listenerScript }

// SetupSnippet returns the two lines a user drops into userSetup.py (or the
// script editor) once listener.py is on Maya's PYTHONPATH.
func SetupSnippet(host string, port int) string {
	return fmt.Sprintf("import mayarig_listener\nmayarig_listener.start(host=%q, port=%d)\n", host, port)
}
