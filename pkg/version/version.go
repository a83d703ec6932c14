package version

// Version is the MayaRig release version, overridable at build time via
// -ldflags "-X github.com/alucardeht/maya-rig-mcp/pkg/version.Version=...".
var Version = "0.3.0"

// ProtocolVersion is the MCP protocol revision this server answers with when
// the client requests one we do not know.
const ProtocolVersion = "2025-06-18"

// SupportedProtocolVersions lists every MCP revision the server accepts.
var SupportedProtocolVersions = []string{
	"2025-06-18",
	"2025-03-26",
	"2024-11-05",
}
