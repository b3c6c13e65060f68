package format

import (
	"fmt"
	"strings"
)

type (
	StorageType     uint8
	Measure         uint8
	Alignment       uint8
	CompressionType uint8
)

const (
	TypeInt8   StorageType = 0x1 // TypeInt8 represents 8-bit integer storage.
	TypeInt16  StorageType = 0x2 // TypeInt16 represents 16-bit integer storage.
	TypeInt32  StorageType = 0x3 // TypeInt32 represents 32-bit integer storage.
	TypeFloat  StorageType = 0x4 // TypeFloat represents 32-bit float storage.
	TypeDouble StorageType = 0x5 // TypeDouble represents 64-bit float storage.
	TypeString StorageType = 0x6 // TypeString represents fixed or variable width string storage.

	MeasureUnknown Measure = 0x0 // MeasureUnknown means no measurement level was recorded.
	MeasureNominal Measure = 0x1 // MeasureNominal represents unordered categories.
	MeasureOrdinal Measure = 0x2 // MeasureOrdinal represents ordered categories.
	MeasureScale   Measure = 0x3 // MeasureScale represents interval or ratio data.

	AlignUnknown Alignment = 0x0 // AlignUnknown means no alignment was recorded.
	AlignLeft    Alignment = 0x1 // AlignLeft aligns values to the left.
	AlignCenter  Alignment = 0x2 // AlignCenter centers values.
	AlignRight   Alignment = 0x3 // AlignRight aligns values to the right.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionGzip CompressionType = 0x5 // CompressionGzip represents gzip compression.
)

func (s StorageType) String() string {
	switch s {
	case TypeInt8:
		return "Int8"
	case TypeInt16:
		return "Int16"
	case TypeInt32:
		return "Int32"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// IsNumeric reports whether s is one of the integer or float storage types.
func (s StorageType) IsNumeric() bool {
	return s >= TypeInt8 && s <= TypeDouble
}

func (m Measure) String() string {
	switch m {
	case MeasureNominal:
		return "Nominal"
	case MeasureOrdinal:
		return "Ordinal"
	case MeasureScale:
		return "Scale"
	default:
		return "Unknown"
	}
}

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

// ParseMeasure parses a measurement level name as written in column metadata.
//
// Matching is case-insensitive. An empty string or "unknown" yields MeasureUnknown.
func ParseMeasure(s string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return MeasureUnknown, nil
	case "nominal":
		return MeasureNominal, nil
	case "ordinal":
		return MeasureOrdinal, nil
	case "scale":
		return MeasureScale, nil
	default:
		return MeasureUnknown, fmt.Errorf("invalid measure: %q", s)
	}
}

// ParseAlignment parses an alignment name as written in column metadata.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return AlignUnknown, nil
	case "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	default:
		return AlignUnknown, fmt.Errorf("invalid alignment: %q", s)
	}
}
