package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Done   func(TargetArgs) (Result, error)
	Remove func(TargetArgs) (Result, error)
	Snooze func(TargetArgs) (Result, error)
	Due    func(DueArgs) (Result, error)
	Export func(ExportArgs) (Result, error)
	Import func(ImportArgs) (Result, error)
	Theme  func(ThemeArgs) (Result, error)
	Clear  func(ClearArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeRemove:
		if handlers.Remove == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Remove(*cmd.Remove)
	case TypeSnooze:
		if handlers.Snooze == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Snooze(*cmd.Snooze)
	case TypeDue:
		if handlers.Due == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Due(*cmd.Due)
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Export(*cmd.Export)
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Import(*cmd.Import)
	case TypeTheme:
		if handlers.Theme == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Theme(*cmd.Theme)
	case TypeClear:
		if handlers.Clear == nil {
			return Result{}, missingHandler(cmd.Type)
		}
		return handlers.Clear(*cmd.Clear)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missingHandler(typ Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
}
