package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chronoplan/chronoplan/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeEdit    Type = "edit"
	TypeSnooze  Type = "snooze"
	TypeDismiss Type = "dismiss"
	TypeDone    Type = "done"
	TypeDelete  Type = "delete"
	TypeList    Type = "list"
	TypeFilter  Type = "filter"
	TypeSearch  Type = "search"
	TypeReset   Type = "reset"
)

// TargetSelected refers to the task under the cursor.
const TargetSelected = "selected"

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

// AddArgs carries an add command. Empty Date or Time means the handler picks
// the current date or minute.
type AddArgs struct {
	Title    string
	Date     string
	Time     string
	List     string
	Reminder bool
}

// EditArgs carries an edit command. Empty fields and a nil Reminder keep the
// task's current value.
type EditArgs struct {
	Target   string
	Title    string
	Date     string
	Time     string
	List     string
	Reminder *bool
}

type SnoozeArgs struct {
	// Minutes is zero when the configured default applies.
	Minutes int
}

type TargetArgs struct {
	Target string
}

type ListArgs struct {
	Name string
}

type FilterArgs struct {
	Filter string
}

type SearchArgs struct {
	Text string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Snooze *SnoozeArgs
	Target *TargetArgs
	List   *ListArgs
	Filter *FilterArgs
	Search *SearchArgs
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
	case TypeEdit:
		return parseEdit(input, args)
	case TypeSnooze:
		return parseSnooze(input, args)
	case TypeDismiss, TypeReset:
		return Command{Type: Type(head), Raw: input}, nil
	case TypeDone, TypeDelete:
		return parseTarget(input, Type(head), args)
	case TypeList:
		return parseList(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Text: strings.Join(args, " ")}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// taskTokens is what the add and edit grammars share:
// "<title words> [@YYYY-MM-DD] [@HH:MM] [#List] [+remind|-remind]".
type taskTokens struct {
	title    string
	date     string
	time     string
	list     string
	reminder *bool
}

func parseTaskTokens(args []string) (taskTokens, error) {
	var out taskTokens
	var title []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "@") && strings.Contains(arg, ":"):
			v := strings.TrimPrefix(arg, "@")
			if !model.ValidTime(v) {
				return out, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid time %q, want HH:MM", v)}
			}
			out.time = v
		case strings.HasPrefix(arg, "@"):
			v := strings.TrimPrefix(arg, "@")
			if !model.ValidDate(v) {
				return out, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", v)}
			}
			out.date = v
		case strings.HasPrefix(arg, "#") && len(arg) > 1:
			out.list = strings.TrimPrefix(arg, "#")
		case strings.EqualFold(arg, "+remind"):
			on := true
			out.reminder = &on
		case strings.EqualFold(arg, "-remind"):
			off := false
			out.reminder = &off
		default:
			title = append(title, arg)
		}
	}
	out.title = strings.TrimSpace(strings.Join(title, " "))
	return out, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	tok, err := parseTaskTokens(args)
	if err != nil {
		return Command{}, err
	}
	if tok.title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	out := AddArgs{Title: tok.title, Date: tok.date, Time: tok.time, List: tok.list}
	if tok.reminder != nil {
		out.Reminder = *tok.reminder
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

// parseEdit reads "edit <id|selected> [title words] [@date] [@time] [#List] [+remind|-remind]".
func parseEdit(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a task id or selected"}
	}
	tok, err := parseTaskTokens(args[1:])
	if err != nil {
		return Command{}, err
	}
	if tok == (taskTokens{}) {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires at least one change"}
	}
	out := EditArgs{
		Target:   args[0],
		Title:    tok.title,
		Date:     tok.date,
		Time:     tok.time,
		List:     tok.list,
		Reminder: tok.reminder,
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &out}, nil
}

func parseSnooze(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{}}, nil
	}
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "snooze takes at most one argument"}
	}
	minutes, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[0]), "m"))
	if err != nil || minutes <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("snooze minutes must be a positive number, got %q", args[0])}
	}
	return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{Minutes: minutes}}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	target := TargetSelected
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes at most one task id", typ)}
	}
	if len(args) == 1 {
		target = args[0]
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: target}}, nil
}

func parseList(raw string, args []string) (Command, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "list requires a name"}
	}
	return Command{Type: TypeList, Raw: raw, List: &ListArgs{Name: name}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires all, today, upcoming or a list name"}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Filter: strings.Join(args, " ")}}, nil
}
