/*
Command is the unit of work the dispatcher moves through the outstanding
FIFO: an argument line, an optional result mapper, and a single-assignment
completion the caller awaits. A Command is built once by the command
surface (commands_*.go) and is never reused — it transitions through at
most one of {resolved with a reply, resolved with a protocol error,
resolved with a transport error, resolved as fire-and-forget}.

Four names get special recognition so the dispatcher and transaction
coordinator can branch on them without an open type switch: MULTI, EXEC,
DISCARD, and CLIENT REPLY (which additionally carries the requested Reply
Mode). Everything else is an ordinary command.
*/
package redwire

import "strings"

// ReplyMode mirrors CLIENT REPLY's three settings.
type ReplyMode int

const (
	ReplyOn ReplyMode = iota
	ReplyOff
	ReplySkip
)

type commandKind int

const (
	cmdNormal commandKind = iota
	cmdMulti
	cmdExec
	cmdDiscard
	cmdClientReply
)

// Mapper turns a reply into the value handed back to the caller. Most
// commands use the default mapper the command surface builds from the
// requested Go type; a handful (SCAN, GEOPOS, XRANGE, ...) register a
// dedicated Mapper that understands the specific Array shape the server
// returns.
type Mapper func(Reply, *Decoders) (any, error)

// Result is what a Command resolves to.
type Result struct {
	Value any
	Err   error
}

// Command is one outstanding request/response slot.
type Command struct {
	args   []any
	decode Mapper
	kind   commandKind
	mode   ReplyMode // only meaningful when kind == cmdClientReply

	result chan Result
}

// NewCommand builds a Command from a heterogeneous argument line. Nil
// entries are dropped before the line is stored — this is how the
// command surface encodes an absent optional modifier (e.g. SET's EX
// argument left unset).
func NewCommand(args []any, decode Mapper) *Command {
	filtered := make([]any, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		filtered = append(filtered, a)
	}
	if decode == nil {
		decode = func(r Reply, dec *Decoders) (any, error) {
			return dec.Decode(anyType, r)
		}
	}
	c := &Command{
		args:   filtered,
		decode: decode,
		result: make(chan Result, 1),
	}
	c.classify()
	return c
}

// argName extracts the textual form of a command-name argument, which
// the surface passes either as a plain string or a CommandType.
func argName(a any) (string, bool) {
	switch v := a.(type) {
	case string:
		return v, true
	case CommandType:
		return string(v), true
	default:
		return "", false
	}
}

func (c *Command) classify() {
	if len(c.args) == 0 {
		return
	}
	name, ok := argName(c.args[0])
	if !ok {
		return
	}
	switch strings.ToUpper(name) {
	case "MULTI":
		c.kind = cmdMulti
	case "EXEC":
		c.kind = cmdExec
	case "DISCARD":
		c.kind = cmdDiscard
	case "CLIENT":
		if len(c.args) >= 3 {
			if sub, ok := argName(c.args[1]); ok && strings.EqualFold(sub, "REPLY") {
				c.kind = cmdClientReply
				if mode, ok := argName(c.args[2]); ok {
					c.mode = parseReplyMode(mode)
				}
			}
		}
	}
}

func parseReplyMode(s string) ReplyMode {
	switch strings.ToUpper(s) {
	case "OFF":
		return ReplyOff
	case "SKIP":
		return ReplySkip
	default:
		return ReplyOn
	}
}

// Line returns the null-stripped argument line for the frame writer.
func (c *Command) Line() []any { return c.args }

// IsMulti, IsExec, IsDiscard, IsClientReply recognize the four tagged
// variants without exposing commandKind.
func (c *Command) IsMulti() bool       { return c.kind == cmdMulti }
func (c *Command) IsExec() bool        { return c.kind == cmdExec }
func (c *Command) IsDiscard() bool     { return c.kind == cmdDiscard }
func (c *Command) IsClientReply() bool { return c.kind == cmdClientReply }

// ReplyMode returns the mode requested by a CLIENT REPLY command. It is
// meaningless for any other kind.
func (c *Command) ReplyMode() ReplyMode { return c.mode }

func (c *Command) resolve(v any, err error) {
	c.result <- Result{Value: v, Err: err}
}

// ResolveReply decodes r (via the command's mapper, or the codec
// directly when no mapper is set) and completes the command.
func (c *Command) ResolveReply(r Reply, dec *Decoders) {
	if r.Kind == KindError {
		c.resolve(nil, r.AsError())
		return
	}
	v, err := c.decode(r, dec)
	c.resolve(v, err)
}

// ResolveError completes the command with a domain error directly,
// bypassing the mapper — used by the transaction coordinator and by
// protocol/transport failure paths.
func (c *Command) ResolveError(err error) {
	c.resolve(nil, err)
}

// ResolveVoid completes a fire-and-forget command (CLIENT REPLY
// OFF/SKIP) with the Null sentinel.
func (c *Command) ResolveVoid() {
	c.resolve(nil, nil)
}

// Wait blocks until the command completes and returns its result.
func (c *Command) Wait() (any, error) {
	res := <-c.result
	return res.Value, res.Err
}

// Text waits and asserts a string result. A fire-and-forget Null
// resolution yields the empty string.
func (c *Command) Text() (string, error) {
	v, err := c.Wait()
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", codecErrorf("result is %T, not string", v)
	}
	return s, nil
}

// Int waits and asserts an int64 result.
func (c *Command) Int() (int64, error) {
	v, err := c.Wait()
	if err != nil || v == nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, codecErrorf("result is %T, not int64", v)
	}
	return n, nil
}

// Float waits and asserts a float64 result.
func (c *Command) Float() (float64, error) {
	v, err := c.Wait()
	if err != nil || v == nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, codecErrorf("result is %T, not float64", v)
	}
	return f, nil
}

// Bool waits and interprets the result as a Redis boolean: integer 1 or
// the simple string "OK" are true, everything else (including a Null
// resolution) is false.
func (c *Command) Bool() (bool, error) {
	v, err := c.Wait()
	if err != nil {
		return false, err
	}
	switch r := v.(type) {
	case int64:
		return r == 1, nil
	case string:
		return r == "OK", nil
	default:
		return false, nil
	}
}

// Strings waits and asserts a []string result.
func (c *Command) Strings() ([]string, error) {
	v, err := c.Wait()
	if err != nil || v == nil {
		return nil, err
	}
	ss, ok := v.([]string)
	if !ok {
		return nil, codecErrorf("result is %T, not []string", v)
	}
	return ss, nil
}
