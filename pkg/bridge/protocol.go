package bridge

import "encoding/json"

// Helper commands. Session commands carry the session id in Request.Session.
const (
	CmdCreateSession         = "create_session"
	CmdSubmitPatch           = "submit_patch"
	CmdSubmitMainScriptPatch = "submit_main_script_patch"
	CmdApplyPatches          = "apply_patches"
	CmdBackupExists          = "backup_exists"
	CmdRestoreBackup         = "restore_backup"
	CmdCreateBackup          = "create_backup"
	CmdIsTargetRunning       = "is_target_running"
	CmdKillTarget            = "kill_target"
	CmdLaunchTarget          = "launch_target"
	CmdWaitUntilTargetEnded  = "wait_until_target_ended"
	CmdGetBasePath           = "get_base_path"
)

// EventLog is the only event a helper sends unprompted.
const EventLog = "log"

// Request is one line written to the helper.
type Request struct {
	ID      string   `json:"id"`
	Command string   `json:"command"`
	Session string   `json:"session,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// Message is one line read from the helper: either the response to a
// request (ID set) or an event (Event set).
type Message struct {
	ID      string          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload string          `json:"payload,omitempty"`
}
