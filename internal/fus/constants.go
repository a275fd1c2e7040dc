// internal/fus/constants.go
package fus

// Operator firmware command set.
// These values define the serial protocol and MUST NOT be configurable.

// ---- COMMANDS ----

// CmdVersion asks for the FUS and wireless-stack versions.
const CmdVersion = "VERSION"

// CmdStatus asks for the FUS state.
const CmdStatus = "STATUS"

// CmdDelete erases the installed wireless stack.
// Any bytes received before the read timeout count as success.
const CmdDelete = "DELETE"

// CmdUpgrade starts installing the image found in the download area.
// The device answers with progress lines until status is 0.
const CmdUpgrade = "UPGRADE"

// ---- FUS VERSION LAYOUT ----

// VersionMajorShift selects byte 3 of fus_version.
const VersionMajorShift = 24

// VersionMinorShift selects byte 2 of fus_version.
const VersionMinorShift = 16

// ---- STATUS CODES ----

// StatusIdle is reported when no operation is ongoing.
const StatusIdle uint32 = 0x00

// StatusFwUpgradeOngoing is the lower bound of the wireless-stack upgrade range.
const StatusFwUpgradeOngoing uint32 = 0x10

// StatusFusUpgradeOngoing is the lower bound of the FUS upgrade range.
const StatusFusUpgradeOngoing uint32 = 0x20

// StatusServiceOngoing is the lower bound of the service range.
const StatusServiceOngoing uint32 = 0x30
