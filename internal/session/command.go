package session

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"ocr-curator/internal/annotation"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrQuit           = errors.New("quit")
)

const commandHelp = `commands:
  list                          show the current blocks
  text <i> <text>               replace the text of block i (text may be empty)
  move <i> <x1> <y1> <x2> <y2>  replace the box of block i
  add <x1> <y1> <x2> <y2>       add an empty block; must not overlap another block
  delete <i> [<i> ...]          delete blocks; indices refer to the list before the command
  history                       show the corrections made so far
  help                          show this help
  quit                          finish curating
`

// Execute runs one curation command against the session and writes any
// output to w. It returns ErrQuit for quit/exit.
func (s *Session) Execute(line string, w io.Writer) error {
	name, rest := cut(line)
	switch strings.ToLower(name) {
	case "":
		return nil
	case "list", "ls":
		return s.writeList(w)
	case "text":
		idx, text := cut(rest)
		i, err := strconv.Atoi(idx)
		if err != nil {
			return fmt.Errorf("usage: text <i> <text>: %w", err)
		}
		if err := s.EditText(i, text); err != nil {
			return err
		}
		fmt.Fprintf(w, "block %d text updated\n", i)
		return nil
	case "move":
		nums, err := ints(rest, 5)
		if err != nil {
			return fmt.Errorf("usage: move <i> <x1> <y1> <x2> <y2>: %w", err)
		}
		from := annotation.Coordinates{X: nums[1], Y: nums[2]}
		to := annotation.Coordinates{X: nums[3], Y: nums[4]}
		if err := s.EditLocation(nums[0], from, to); err != nil {
			return err
		}
		fmt.Fprintf(w, "block %d moved to %s-%s\n", nums[0], from, to)
		return nil
	case "add":
		nums, err := ints(rest, 4)
		if err != nil {
			return fmt.Errorf("usage: add <x1> <y1> <x2> <y2>: %w", err)
		}
		a, err := s.Add(annotation.Coordinates{X: nums[0], Y: nums[1]}, annotation.Coordinates{X: nums[2], Y: nums[3]})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "block %d added at %s-%s\n", s.Len()-1, a.From, a.To)
		return nil
	case "delete", "rm":
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return errors.New("usage: delete <i> [<i> ...]")
		}
		indices, err := ints(rest, len(fields))
		if err != nil {
			return fmt.Errorf("usage: delete <i> [<i> ...]: %w", err)
		}
		before := s.Len()
		if err := s.DeleteIndices(indices...); err != nil {
			return err
		}
		fmt.Fprintf(w, "%d block(s) deleted\n", before-s.Len())
		return nil
	case "history":
		for _, c := range s.History() {
			fmt.Fprintln(w, c)
		}
		return nil
	case "help", "?":
		_, err := io.WriteString(w, commandHelp)
		return err
	case "quit", "exit", "done":
		return ErrQuit
	default:
		return fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}
}

func (s *Session) writeList(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFROM\tTO\tTEXT")
	for i, a := range s.Annotations() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, a.From, a.To, a.ExtractedText)
	}
	return tw.Flush()
}

func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	head, tail, _ := strings.Cut(s, " ")
	return head, strings.TrimSpace(tail)
}

func ints(s string, n int) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
