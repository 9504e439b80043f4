// Package parsers turns specific probes' raw stdout into typed structs.
package parsers

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockDeviceType is lsblk's TYPE column, normalized to a closed set.
type BlockDeviceType string

const (
	BlockDeviceDisk    BlockDeviceType = "disk"
	BlockDevicePart    BlockDeviceType = "part"
	BlockDeviceLVM     BlockDeviceType = "lvm"
	BlockDeviceCrypt   BlockDeviceType = "crypt"
	BlockDeviceLoop    BlockDeviceType = "loop"
	BlockDeviceRom     BlockDeviceType = "rom"
	BlockDeviceUnknown BlockDeviceType = "unknown"
)

func blockDeviceTypeFromString(s string) BlockDeviceType {
	switch strings.ToLower(s) {
	case "disk":
		return BlockDeviceDisk
	case "part":
		return BlockDevicePart
	case "lvm":
		return BlockDeviceLVM
	case "crypt":
		return BlockDeviceCrypt
	case "loop":
		return BlockDeviceLoop
	case "rom":
		return BlockDeviceRom
	default:
		return BlockDeviceUnknown
	}
}

// BlockDevice is one parsed lsblk row.
type BlockDevice struct {
	Name        string
	SizeBytes   uint64
	DeviceType  BlockDeviceType
	Mountpoints []string
	Parent      string // "" when this device has no parent
	ReadOnly    bool
}

// ParseError reports a structural problem in a probe's output, distinct
// from the probe's own exit code.
type ParseError struct {
	ProbeID string
	Reason  string
	Line    int // 0 when not line-specific
	Excerpt string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d): %q", e.ProbeID, e.Reason, e.Line, e.Excerpt)
	}
	return fmt.Sprintf("%s: %s: %q", e.ProbeID, e.Reason, e.Excerpt)
}

// ParseLsblk parses the default column output of plain `lsblk` into typed
// block devices,
// including tree-structure child devices and multi-line mountpoints for
// stacked filesystems like btrfs subvolumes.
//
// Expected shape:
//
//	NAME        MAJ:MIN RM   SIZE RO TYPE MOUNTPOINTS
//	nvme0n1     259:0    0 953.9G  0 disk
//	├─nvme0n1p1 259:1    0   100M  0 part
//	└─nvme0n1p6 259:6    0 802.1G  0 part /
func ParseLsblk(probeID, output string) ([]BlockDevice, error) {
	lines := strings.Split(output, "\n")
	if len(strings.TrimSpace(output)) == 0 {
		return nil, &ParseError{ProbeID: probeID, Reason: "empty output", Excerpt: output}
	}

	headerIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "NAME") && strings.Contains(l, "TYPE") {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, &ParseError{ProbeID: probeID, Reason: "no header line found", Excerpt: output}
	}

	var devices []BlockDevice
	var currentParent string

	for i := headerIdx + 1; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "/") && len(devices) > 0 {
			last := &devices[len(devices)-1]
			last.Mountpoints = append(last.Mountpoints, trimmed)
			continue
		}

		device, err := parseDeviceLine(line, currentParent)
		if err != nil {
			return nil, &ParseError{ProbeID: probeID, Reason: err.Error(), Line: i + 1, Excerpt: line}
		}
		if device.DeviceType == BlockDeviceDisk {
			currentParent = device.Name
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func parseDeviceLine(line, currentParent string) (BlockDevice, error) {
	nameStart := strings.IndexFunc(line, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	})
	if nameStart == -1 {
		return BlockDevice{}, fmt.Errorf("missing device name")
	}

	rest := line[nameStart:]
	nameEnd := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' })
	var name string
	if nameEnd == -1 {
		name = strings.TrimSpace(rest)
		rest = ""
	} else {
		name = strings.TrimSpace(rest[:nameEnd])
		rest = rest[nameEnd:]
	}
	if name == "" {
		return BlockDevice{}, fmt.Errorf("missing device name")
	}

	isChild := strings.HasPrefix(line, "├") || strings.HasPrefix(line, "└") || strings.HasPrefix(line, "│")
	var parent string
	if isChild {
		parent = currentParent
	}

	parts := strings.Fields(rest)
	if len(parts) < 5 {
		return BlockDevice{}, fmt.Errorf("malformed row: expected at least 5 columns after name, got %d", len(parts))
	}

	sizeBytes := parseSize(parts[2])
	readOnly := parts[3] == "1"
	deviceType := blockDeviceTypeFromString(parts[4])

	var mountpoints []string
	if len(parts) > 5 {
		mountpoints = append(mountpoints, parts[5:]...)
	}

	return BlockDevice{
		Name:        name,
		SizeBytes:   sizeBytes,
		DeviceType:  deviceType,
		Mountpoints: mountpoints,
		Parent:      parent,
		ReadOnly:    readOnly,
	}, nil
}

// parseSize reads lsblk's human-readable size column ("953.9G", "100M") into
// bytes. Unparsable input yields 0 rather than failing the whole row — a
// device list missing one size is still useful evidence.
func parseSize(s string) uint64 {
	if s == "" {
		return 0
	}
	unit := s[len(s)-1]
	multiplier := uint64(1)
	numPart := s
	switch unit {
	case 'K', 'k':
		multiplier = 1 << 10
		numPart = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1 << 20
		numPart = s[:len(s)-1]
	case 'G', 'g':
		multiplier = 1 << 30
		numPart = s[:len(s)-1]
	case 'T', 't':
		multiplier = 1 << 40
		numPart = s[:len(s)-1]
	}
	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0
	}
	return uint64(f * float64(multiplier))
}
