package echo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
	"sonar-prox.klederson.com/internal/sonar"
)

// Step is one scripted capture event with the script line it came from.
type Step struct {
	Line  int
	Event hw.Capture
}

// ParseScript reads a replay script. Each line holds one command:
//
//	rise COUNT          rising edge latched at COUNT
//	fall COUNT          falling edge latched at COUNT
//	raw CODE COUNT      event with an arbitrary vector code
//	echo CM [START]     full pulse for a target at CM cm
//
// Numbers accept any Go integer syntax. Text after # is ignored.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields, err := shlex.Split(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields) == 0 {
			continue
		}
		evs, err := parseCommand(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for _, ev := range evs {
			steps = append(steps, Step{Line: line, Event: ev})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

func parseCommand(fields []string) ([]hw.Capture, error) {
	rising := hw.SourceFor(config.EchoRisingChannel)
	falling := hw.SourceFor(config.EchoFallingChannel)

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "rise", "fall":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: want COUNT, got %d arguments", cmd, len(args))
		}
		count, err := parseUint(args[0], 16)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		src := rising
		if cmd == "fall" {
			src = falling
		}
		return []hw.Capture{{Source: src, Count: uint16(count)}}, nil

	case "raw":
		if len(args) != 2 {
			return nil, fmt.Errorf("raw: want CODE COUNT, got %d arguments", len(args))
		}
		code, err := parseUint(args[0], 8)
		if err != nil {
			return nil, fmt.Errorf("raw: code: %w", err)
		}
		count, err := parseUint(args[1], 16)
		if err != nil {
			return nil, fmt.Errorf("raw: count: %w", err)
		}
		return []hw.Capture{{Source: hw.Source(code), Count: uint16(count)}}, nil

	case "echo":
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("echo: want CM [START], got %d arguments", len(args))
		}
		cm, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("echo: distance %q: %w", args[0], err)
		}
		var start uint64
		if len(args) == 2 {
			if start, err = parseUint(args[1], 16); err != nil {
				return nil, fmt.Errorf("echo: start: %w", err)
			}
		}
		if start >= config.CapturePeriodTicks {
			return nil, fmt.Errorf("echo: start %d outside the capture period", start)
		}
		width := uint64(sonar.TicksForDistance(cm))
		end := (start + width) % config.CapturePeriodTicks
		return []hw.Capture{
			{Source: rising, Count: uint16(start)},
			{Source: falling, Count: uint16(end)},
		}, nil
	}
	return nil, fmt.Errorf("unknown event %q", fields[0])
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			return 0, fmt.Errorf("%q: %w", s, ne.Err)
		}
		return 0, err
	}
	return v, nil
}

