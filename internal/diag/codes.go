package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// входной YAML
	YmlInfo    Code = 2000
	YmlInvalid Code = 2001

	// проходы форматирования
	FmtInfo           Code = 3000
	FmtNonConvergence Code = 3001
	FmtNotApplicable  Code = 3002

	// файлы
	IOLoadFailed       Code = 4001
	IOUnsupportedInput Code = 4002
	IOWriteFailed      Code = 4003

	// конфигурация
	CfgInvalid Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	YmlInfo:            "YAML information",
	YmlInvalid:         "Malformed YAML document",
	FmtInfo:            "Formatter information",
	FmtNonConvergence:  "Indentation did not converge",
	FmtNotApplicable:   "Template has no Resources section",
	IOLoadFailed:       "Cannot read file",
	IOUnsupportedInput: "Unsupported input path",
	IOWriteFailed:      "Cannot write file",
	CfgInvalid:         "Invalid configuration",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("YML%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// MarshalText renders the code ID in JSON output.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}
