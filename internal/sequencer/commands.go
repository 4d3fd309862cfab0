package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lifegrid/pkg/sims/life"
)

var (
	// ErrUnknownCommand is returned for a command word that is neither a
	// built-in command nor a figure name.
	ErrUnknownCommand = errors.New("sequencer: unknown command")
	// ErrBadArgs is returned when a command has the wrong number or kind of
	// arguments.
	ErrBadArgs = errors.New("sequencer: bad arguments")
)

// Apply parses and executes one command line:
//
//	set <row> <col> <0|1>
//	flip <row> <col>
//	clear
//	random [density]
//	seed <n>
//	next [count]          step and queue each generation (alias: step)
//	bang                  queue the current frame, see Pending
//	stamp <row> <col> <h> <w> <bits...>
//	<figure> <row> <col>  e.g. "glider 0 0", see life.Figures
//
// Blank lines and lines starting with '#' are ignored.
func (s *Sequencer) Apply(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	s.log.Debug("command", "cmd", cmd, "args", args)

	switch cmd {
	case "set":
		v, err := uints(args, 3)
		if err != nil {
			return fmt.Errorf("set: %w", err)
		}
		if v[2] > 1 {
			return fmt.Errorf("set: %w: state must be 0 or 1", ErrBadArgs)
		}
		return wrap("set", s.grid.SetAt(v[0], v[1], v[2] == 1))
	case "flip":
		v, err := uints(args, 2)
		if err != nil {
			return fmt.Errorf("flip: %w", err)
		}
		return wrap("flip", s.grid.FlipAt(v[0], v[1]))
	case "clear":
		s.grid.Clear()
		return nil
	case "random":
		density := life.DefaultDensity
		if len(args) > 1 {
			return fmt.Errorf("random: %w", ErrBadArgs)
		}
		if len(args) == 1 {
			d, err := strconv.ParseFloat(args[0], 64)
			if err != nil || d < 0 || d > 1 {
				return fmt.Errorf("random: %w: density %q", ErrBadArgs, args[0])
			}
			density = d
		}
		return wrap("random", s.grid.Random(density))
	case "seed":
		if len(args) != 1 {
			return fmt.Errorf("seed: %w", ErrBadArgs)
		}
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("seed: %w: %q", ErrBadArgs, args[0])
		}
		s.grid.Seed(n)
		return nil
	case "next", "step":
		count := 1
		if len(args) > 1 {
			return fmt.Errorf("%s: %w", cmd, ErrBadArgs)
		}
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("%s: %w: count %q", cmd, ErrBadArgs, args[0])
			}
			count = n
		}
		for i := 0; i < count; i++ {
			s.out = append(s.out, s.Tick())
		}
		return nil
	case "bang":
		s.out = append(s.out, s.Frame())
		return nil
	case "stamp":
		return s.stamp(args)
	}

	f, err := life.Lookup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	v, err := uints(args, 2)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	return wrap(f.Name, s.grid.AddFigure(v[0], v[1], f))
}

// ApplyAll runs each line through Apply and stops at the first error.
func (s *Sequencer) ApplyAll(lines []string) error {
	for i, line := range lines {
		if err := s.Apply(line); err != nil {
			return fmt.Errorf("command %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Sequencer) stamp(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("stamp: %w", ErrBadArgs)
	}
	v, err := uints(args[:4], 4)
	if err != nil {
		return fmt.Errorf("stamp: %w", err)
	}
	bits := make([]bool, 0, len(args)-4)
	for _, a := range args[4:] {
		switch a {
		case "0":
			bits = append(bits, false)
		case "1":
			bits = append(bits, true)
		default:
			return fmt.Errorf("stamp: %w: bit %q", ErrBadArgs, a)
		}
	}
	return wrap("stamp", s.grid.Stamp(v[0], v[1], v[2], v[3], bits...))
}

func uints(args []string, n int) ([]uint16, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrBadArgs, n, len(args))
	}
	out := make([]uint16, n)
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadArgs, a)
		}
		out[i] = uint16(v)
	}
	return out, nil
}

func wrap(cmd string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}
