package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeRemove Type = "rm"
	TypeUndo   Type = "undo"
	TypeEdit   Type = "edit"
	TypeGoto   Type = "goto"
	TypeFocus  Type = "focus"
	TypeImport Type = "import"
	TypeExport Type = "export"
	TypeFilter Type = "filter"
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

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Time     string
	Category string
	Title    string
	// Points overrides the category default when set.
	Points *int
}

type TargetArgs struct {
	ID string
}

// EditArgs holds the raw field=value pairs in input order.
type EditArgs struct {
	ID     string
	Fields []Field
}

type Field struct {
	Name  string
	Value string
}

type GotoArgs struct {
	Target string
}

type FocusAction string

const (
	FocusBind   FocusAction = "bind"
	FocusUnbind FocusAction = "unbind"
	FocusStart  FocusAction = "start"
	FocusPause  FocusAction = "pause"
	FocusReset  FocusAction = "reset"
	FocusAuto   FocusAction = "auto"
)

type FocusArgs struct {
	Action FocusAction
	TaskID string
	On     bool
}

type PathArgs struct {
	Path string
}

// FilterArgs replaces the whole Day view filter; empty fields clear theirs.
type FilterArgs struct {
	Search   string
	Category string
	Status   string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Edit   *EditArgs
	Goto   *GotoArgs
	Focus  *FocusArgs
	Path   *PathArgs
	Filter *FilterArgs
}

var editableFields = map[string]bool{
	"title":    true,
	"category": true,
	"date":     true,
	"time":     true,
	"points":   true,
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
	case TypeDone, TypeRemove:
		return parseTarget(input, Type(head), args)
	case "delete", "del":
		return parseTarget(input, TypeRemove, args)
	case TypeUndo:
		return Command{Type: TypeUndo, Raw: input}, nil
	case TypeEdit:
		return parseEdit(input, args)
	case TypeGoto:
		return parseGoto(input, args)
	case TypeFocus:
		return parseFocus(input, args)
	case TypeImport, TypeExport:
		return parsePath(input, Type(head), args)
	case TypeFilter:
		return parseFilter(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd reads "HH:MM category [points=N] title".
func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, invalid("add requires time, category and title")
	}
	out := &AddArgs{Time: args[0], Category: strings.ToLower(args[1])}
	rest := args[2:]
	if name, value, ok := strings.Cut(rest[0], "="); ok && strings.EqualFold(name, "points") {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return Command{}, invalid("points must be a non-negative number, got %q", value)
		}
		out.Points = &n
		rest = rest[1:]
	}
	out.Title = strings.TrimSpace(strings.Join(rest, " "))
	if out.Title == "" {
		return Command{}, invalid("add requires time, category and title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: out}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires a task id", typ)
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{ID: args[0]}}, nil
}

// parseEdit reads field=value pairs. A token without '=' continues the
// previous value, so titles can contain spaces.
func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("edit requires a task id and at least one field=value")
	}
	out := &EditArgs{ID: args[0]}
	for _, tok := range args[1:] {
		name, value, ok := strings.Cut(tok, "=")
		if !ok {
			if len(out.Fields) == 0 {
				return Command{}, invalid("expected field=value, got %q", tok)
			}
			last := &out.Fields[len(out.Fields)-1]
			last.Value = strings.TrimSpace(last.Value + " " + tok)
			continue
		}
		name = strings.ToLower(name)
		if !editableFields[name] {
			return Command{}, invalid("unknown field %q", name)
		}
		out.Fields = append(out.Fields, Field{Name: name, Value: value})
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: out}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("goto requires a date, today, +N or -N")
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Target: strings.ToLower(args[0])}}, nil
}

func parseFocus(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("focus requires a task id, none, start, pause, reset or auto on|off")
	}
	head := strings.ToLower(args[0])
	fa := &FocusArgs{}
	switch head {
	case "none", "off":
		fa.Action = FocusUnbind
	case string(FocusStart), string(FocusPause), string(FocusReset):
		fa.Action = FocusAction(head)
	case string(FocusAuto):
		if len(args) != 2 {
			return Command{}, invalid("focus auto requires on or off")
		}
		switch strings.ToLower(args[1]) {
		case "on":
			fa.On = true
		case "off":
		default:
			return Command{}, invalid("focus auto requires on or off, got %q", args[1])
		}
		fa.Action = FocusAuto
	default:
		fa.Action = FocusBind
		fa.TaskID = args[0]
	}
	return Command{Type: TypeFocus, Raw: raw, Focus: fa}, nil
}

func parsePath(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("%s requires a file path", typ)
	}
	return Command{Type: typ, Raw: raw, Path: &PathArgs{Path: strings.Join(args, " ")}}, nil
}

// parseFilter reads "clear" or any mix of category=C, status=S and search
// words.
func parseFilter(raw string, args []string) (Command, error) {
	out := &FilterArgs{}
	if len(args) == 1 && strings.EqualFold(args[0], "clear") {
		return Command{Type: TypeFilter, Raw: raw, Filter: out}, nil
	}
	var words []string
	for _, tok := range args {
		name, value, ok := strings.Cut(tok, "=")
		switch {
		case ok && (strings.EqualFold(name, "category") || strings.EqualFold(name, "cat")):
			out.Category = strings.ToLower(value)
		case ok && strings.EqualFold(name, "status"):
			out.Status = strings.ToLower(value)
		default:
			words = append(words, tok)
		}
	}
	out.Search = strings.Join(words, " ")
	return Command{Type: TypeFilter, Raw: raw, Filter: out}, nil
}

// ResolveDate turns a goto target into a date key relative to today.
func ResolveDate(target string, today time.Time) (string, error) {
	target = strings.TrimSpace(strings.ToLower(target))
	switch {
	case target == "today":
		return today.Format("2006-01-02"), nil
	case strings.HasPrefix(target, "+") || strings.HasPrefix(target, "-"):
		n, err := strconv.Atoi(target)
		if err != nil {
			return "", invalid("bad day offset %q", target)
		}
		y, m, d := today.Date()
		return time.Date(y, m, d+n, 12, 0, 0, 0, today.Location()).Format("2006-01-02"), nil
	default:
		day, err := time.ParseInLocation("2006-01-02", target, today.Location())
		if err != nil {
			return "", invalid("bad date %q", target)
		}
		return day.Format("2006-01-02"), nil
	}
}
