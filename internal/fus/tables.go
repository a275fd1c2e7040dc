// internal/fus/tables.go
package fus

// ErrorString maps a FUS error code to its description.
func ErrorString(code uint32) string {
	if s, ok := errorText[code]; ok {
		return s
	}
	return "Unknown code"
}

// StatusString maps a FUS status code to its state name.
func StatusString(code uint32) string {
	switch {
	case code >= StatusServiceOngoing:
		return "FUS_STATE_SERVICE_ONGOING"
	case code >= StatusFusUpgradeOngoing:
		return "FUS_STATE_FUS_UPGRD_ONGOING"
	case code >= StatusFwUpgradeOngoing:
		return "FUS_STATE_FW_UPGRD_ONGOING"
	case code == StatusIdle:
		return "FUS_STATE_IDLE"
	default:
		return "Unknown status code"
	}
}

var errorText = map[uint32]string{
	0x00: "FUS_STATE_NO_ERROR => No error occurred.",
	0x01: "FUS_STATE_IMG_NOT_FOUND => Firmware/FUS upgrade requested but no image found. (such as image header corrupted or flash memory corrupted)",
	0x02: "FUS_STATE_IMG_CORRUPT => Firmware/FUS upgrade requested, image found, authentic but not integer (corruption on the data)",
	0x03: "FUS_STATE_IMG_NOT_AUTHENTIC => Firmware/FUS upgrade requested, image found, but its signature is not valid (wrong signature, wrong signature header)",
	0x04: "FUS_STATE_NO_ENOUGH_SPACE => Firmware/FUS upgrade requested, image found and authentic, but there is no enough space to install it due to the already installed image. Install the stack in a lower location then try again.",
	0x05: "FUS_IMAGE_USRABORT => Operation aborted by user or power off occurred",
	0x06: "FUS_IMAGE_ERSERROR => Flash Erase Error",
	0x07: "FUS_IMAGE_WRTERROR => Flash Write Error",
	0x08: "FUS_AUTH_TAG_ST_NOTFOUND => STMicroelectronics Authentication tag not found error in the image",
	0x09: "FUS_AUTH_TAG_CUST_NOTFOUND => Customer Authentication tag not found in the image",
	0x0A: "FUS_AUTH_KEY_LOCKED => The key that the user tries to load is currently locked",
	0x11: "FUS_FW_ROLLBACK_ERROR",
}
