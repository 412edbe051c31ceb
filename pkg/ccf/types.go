package ccf

import (
	"encoding/binary"
	"fmt"
)

// TypeTag identifies the value encoding of a column.
type TypeTag uint8

// Registered type tags. Other values are reserved for extension.
const (
	TypeInt32 TypeTag = 0
)

// TypeInfo describes a registered column type.
type TypeInfo struct {
	Tag   TypeTag
	Name  string
	Width int // Bytes per value

	encode func(dst []byte, values []int32)
	decode func(dst []int32, src []byte)
}

var typeRegistry = map[TypeTag]TypeInfo{
	TypeInt32: {
		Tag:   TypeInt32,
		Name:  "int32",
		Width: 4,
		encode: func(dst []byte, values []int32) {
			for i, v := range values {
				binary.LittleEndian.PutUint32(dst[i*4:], uint32(v))
			}
		},
		decode: func(dst []int32, src []byte) {
			for i := range dst {
				dst[i] = int32(binary.LittleEndian.Uint32(src[i*4:]))
			}
		},
	},
}

// LookupType returns the registry entry for tag.
func LookupType(tag TypeTag) (TypeInfo, error) {
	info, ok := typeRegistry[tag]
	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: tag %d", ErrUnsupportedType, uint8(tag))
	}
	return info, nil
}

// ParseTypeTag maps a registered type name such as "int32" to its tag.
func ParseTypeTag(name string) (TypeTag, error) {
	for tag, info := range typeRegistry {
		if info.Name == name {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

func (t TypeTag) String() string {
	if info, ok := typeRegistry[t]; ok {
		return info.Name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}
