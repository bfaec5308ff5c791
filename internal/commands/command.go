package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeRemove Type = "remove"
	TypeSnooze Type = "snooze"
	TypeDue    Type = "due"
	TypeExport Type = "export"
	TypeImport Type = "import"
	TypeTheme  Type = "theme"
	TypeClear  Type = "clear"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text string
}

// TargetArgs references a task in the visible list, either by 1-based
// position or by an id prefix.
type TargetArgs struct {
	Target string
}

type DueArgs struct {
	Target string
	When   string
}

type ExportArgs struct {
	Format string
}

type ImportArgs struct {
	Path string
}

type ThemeArgs struct {
	Name string
}

type ClearArgs struct {
	Scope string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *TargetArgs
	Remove *TargetArgs
	Snooze *TargetArgs
	Due    *DueArgs
	Export *ExportArgs
	Import *ImportArgs
	Theme  *ThemeArgs
	Clear  *ClearArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseTarget(TypeDone, input, args)
	case TypeRemove:
		return parseTarget(TypeRemove, input, args)
	case TypeSnooze:
		return parseTarget(TypeSnooze, input, args)
	case TypeDue:
		return parseDue(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeTheme:
		return parseTheme(input, args)
	case TypeClear:
		return parseClear(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text}}, nil
}

func parseTarget(typ Type, raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task reference", typ)}
	}
	target := &TargetArgs{Target: args[0]}
	cmd := Command{Type: typ, Raw: raw}
	switch typ {
	case TypeDone:
		cmd.Done = target
	case TypeRemove:
		cmd.Remove = target
	case TypeSnooze:
		cmd.Snooze = target
	}
	return cmd, nil
}

func parseDue(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due requires a task reference and a time"}
	}
	return Command{Type: TypeDue, Raw: raw, Due: &DueArgs{Target: args[0], When: strings.Join(args[1:], " ")}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	format := "json"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}
	if format != "json" && format != "xlsx" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unsupported export format: %s", format)}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Format: format}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: strings.Join(args, " ")}}, nil
}

func parseTheme(raw string, args []string) (Command, error) {
	name := ""
	if len(args) > 0 {
		name = strings.ToLower(args[0])
	}
	if name != "" && name != "dark" && name != "light" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown theme: %s", name)}
	}
	return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{Name: name}}, nil
}

func parseClear(raw string, args []string) (Command, error) {
	scope := "completed"
	if len(args) > 0 {
		scope = strings.ToLower(args[0])
	}
	if scope != "completed" && scope != "all" && scope != "notifications" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown clear scope: %s", scope)}
	}
	return Command{Type: TypeClear, Raw: raw, Clear: &ClearArgs{Scope: scope}}, nil
}
