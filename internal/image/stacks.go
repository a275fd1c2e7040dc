// internal/image/stacks.go
package image

import (
	"fmt"
	"strings"
)

// Stack is one wireless-stack variant for the radio co-processor.
// The set is closed; every value maps to a fixed hex file in the
// wireless_stack directory.
type Stack uint8

const (
	StackBleHciAdvScan Stack = iota
	StackBleHciExt
	StackBleHci
	StackBleLld
	StackBleMac
	StackBleStackFullExt
	StackBleStackFull
	StackBleStackLight
	StackBleThreadDyn
	StackBleThreadSta
	StackBleZigbeeFfdDyn
	StackBleZigbeeFfdSta
	StackBleZigbeeRfdDyn
	StackBleZigbeeRfdSta
	StackMac802154
	StackPhy802154
	StackThreadFtd
	StackThreadMtd
	StackThreadRcp
	StackZigbeeFfd
	StackZigbeeRfd

	stackCount
)

// DefaultStack is the stack selected when nothing else is configured.
const DefaultStack = StackBleHciExt

type stackInfo struct {
	id       string // config / CLI identifier
	label    string
	filename string
}

// ---- LOOKUP TABLE (index = Stack) ----

var stacks = [stackCount]stackInfo{
	StackBleHciAdvScan:   {"BLE_HCI_ADV_SCAN", "BLE HCI AdvScan", "stm32wb5xxG_BLE_HCI_AdvScan_fw.hex"},
	StackBleHciExt:       {"BLE_HCI_EXT", "BLE HCI Layer extended", "stm32wb5xxG_BLE_HCILayer_extended_fw.hex"},
	StackBleHci:          {"BLE_HCI", "BLE HCI Layer", "stm32wb5xxG_BLE_HCILayer_fw.hex"},
	StackBleLld:          {"BLE_LLD", "BLE LLD", "stm32wb5xxG_BLE_LLD_fw.hex"},
	StackBleMac:          {"BLE_MAC", "BLE Mac 802.15.4", "stm32wb5xxG_BLE_Mac_802_15_4_fw.hex"},
	StackBleStackFullExt: {"BLE_STACK_FULL_EXT", "BLE Stack full extended", "stm32wb5xxG_BLE_Stack_full_extended_fw.hex"},
	StackBleStackFull:    {"BLE_STACK_FULL", "BLE Stack full", "stm32wb5xxG_BLE_Stack_full_fw.hex"},
	StackBleStackLight:   {"BLE_STACK_LIGHT", "BLE Stack light", "stm32wb5xxG_BLE_Stack_light_fw.hex"},
	StackBleThreadDyn:    {"BLE_THREAD_DYN", "BLE Thread dynamic", "stm32wb5xxG_BLE_Thread_dynamic_fw.hex"},
	StackBleThreadSta:    {"BLE_THREAD_STA", "BLE Thread static", "stm32wb5xxG_BLE_Thread_static_fw.hex"},
	StackBleZigbeeFfdDyn: {"BLE_ZIGBEE_FFD_DYN", "BLE Zigbee FFD dynamic", "stm32wb5xxG_BLE_Zigbee_FFD_dynamic_fw.hex"},
	StackBleZigbeeFfdSta: {"BLE_ZIGBEE_FFD_STA", "BLE Zigbee FFD static", "stm32wb5xxG_BLE_Zigbee_FFD_static_fw.hex"},
	StackBleZigbeeRfdDyn: {"BLE_ZIGBEE_RFD_DYN", "BLE Zigbee RFD dynamic", "stm32wb5xxG_BLE_Zigbee_RFD_dynamic_fw.hex"},
	StackBleZigbeeRfdSta: {"BLE_ZIGBEE_RFD_STA", "BLE Zigbee RFD static", "stm32wb5xxG_BLE_Zigbee_RFD_static_fw.hex"},
	StackMac802154:       {"MAC_802_15_4", "Mac 802.15.4", "stm32wb5xxG_Mac_802_15_4_fw.hex"},
	StackPhy802154:       {"PHY_802_15_4", "Phy 802.15.4", "stm32wb5xxG_Phy_802_15_4_fw.hex"},
	StackThreadFtd:       {"THREAD_FTD", "Thread FTD", "stm32wb5xxG_Thread_FTD_fw.hex"},
	StackThreadMtd:       {"THREAD_MTD", "Thread MTD", "stm32wb5xxG_Thread_MTD_fw.hex"},
	StackThreadRcp:       {"THREAD_RCP", "Thread RCP", "stm32wb5xxG_Thread_RCP_fw.hex"},
	StackZigbeeFfd:       {"ZIGBEE_FFD", "Zigbee FFD", "stm32wb5xxG_Zigbee_FFD_fw.hex"},
	StackZigbeeRfd:       {"ZIGBEE_RFD", "Zigbee RFD", "stm32wb5xxG_Zigbee_RFD_fw.hex"},
}

// AllStacks lists every variant in display order.
func AllStacks() []Stack {
	out := make([]Stack, 0, stackCount)
	for s := Stack(0); s < stackCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Stack) valid() bool { return s < stackCount }

// ID is the configuration identifier, e.g. "BLE_HCI_EXT".
func (s Stack) ID() string {
	if !s.valid() {
		return fmt.Sprintf("STACK(%d)", uint8(s))
	}
	return stacks[s].id
}

// Filename is the hex image name inside the wireless_stack directory.
func (s Stack) Filename() string {
	if !s.valid() {
		return ""
	}
	return stacks[s].filename
}

func (s Stack) String() string {
	if !s.valid() {
		return s.ID()
	}
	return stacks[s].label
}

// ParseStack accepts an identifier ("THREAD_FTD") or a display label ("Thread FTD"),
// case-insensitively.
func ParseStack(v string) (Stack, error) {
	v = strings.TrimSpace(v)
	for s := Stack(0); s < stackCount; s++ {
		if strings.EqualFold(v, stacks[s].id) || strings.EqualFold(v, stacks[s].label) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown wireless stack %q", v)
}

// ---- FUS IMAGES ----

// Fus is the firmware upgrade service image to install.
type Fus uint8

const (
	// FusLegacy upgrades a FUS still on 0.x; it must be installed before FusCurrent.
	FusLegacy Fus = iota
	// FusCurrent installs FUS 1.2.0.
	FusCurrent
)

func (f Fus) Filename() string {
	switch f {
	case FusLegacy:
		return "stm32wb5xxG_FUS_fw_for_fus_0_5_3.hex"
	case FusCurrent:
		return "stm32wb5xxG_FUS_fw.hex"
	default:
		return ""
	}
}

func (f Fus) String() string {
	switch f {
	case FusLegacy:
		return "FUS for 0.5.3"
	case FusCurrent:
		return "FUS 1.2.0"
	default:
		return fmt.Sprintf("FUS(%d)", uint8(f))
	}
}
