/*
String command wrappers. Each method builds an argument line (with nil
standing in for an absent optional modifier — NewCommand strips them)
and hands the record to the dispatcher through Run.
*/
package redwire

// SetOptions carries SET's optional modifiers. The zero value means a
// plain unconditional SET with no expiry.
type SetOptions struct {
	Seconds      int64 // EX: expire after this many seconds
	Milliseconds int64 // PX: expire after this many milliseconds
	IfExists     bool  // XX: only set if the key already exists
	IfNotExists  bool  // NX: only set if the key does not exist
}

// Set sets key to value.
func (c *Client) Set(key string, value any) *Command {
	return c.Run(mapText, SET, key, value)
}

// SetWith sets key to value with the given modifiers. A conditional
// SET whose condition fails answers Null, which resolves to nil.
func (c *Client) SetWith(key string, value any, o SetOptions) *Command {
	var ex, exVal, px, pxVal, mode any
	if o.Seconds > 0 {
		ex, exVal = "EX", o.Seconds
	}
	if o.Milliseconds > 0 {
		px, pxVal = "PX", o.Milliseconds
	}
	switch {
	case o.IfExists:
		mode = "XX"
	case o.IfNotExists:
		mode = "NX"
	}
	return c.Run(mapOptionalText, SET, key, value, ex, exVal, px, pxVal, mode)
}

// Get returns the value of key, or nil if it does not exist.
func (c *Client) Get(key string) *Command {
	return c.Run(mapOptionalText, GET, key)
}

// GetBytes returns the raw value of key for binary payloads.
func (c *Client) GetBytes(key string) *Command {
	return c.Run(mapBytes, GET, key)
}

// GetSet sets key to value and returns the old value.
func (c *Client) GetSet(key string, value any) *Command {
	return c.Run(mapOptionalText, GETSET, key, value)
}

// GetDel returns the value of key and deletes the key.
func (c *Client) GetDel(key string) *Command {
	return c.Run(mapOptionalText, GETDEL, key)
}

// GetRange returns the substring at [start, end].
func (c *Client) GetRange(key string, start, end int64) *Command {
	return c.Run(mapText, GETRANGE, key, start, end)
}

// SetRange overwrites part of the string at key starting at offset.
func (c *Client) SetRange(key string, offset int64, value any) *Command {
	return c.Run(mapInt, SETRANGE, key, offset, value)
}

// SetEX sets key with a TTL in seconds.
func (c *Client) SetEX(key string, seconds int64, value any) *Command {
	return c.Run(mapText, SETEX, key, seconds, value)
}

// SetNX sets key only if it does not exist.
func (c *Client) SetNX(key string, value any) *Command {
	return c.Run(mapInt, SETNX, key, value)
}

// Append appends value to key and returns the new length.
func (c *Client) Append(key string, value any) *Command {
	return c.Run(mapInt, APPEND, key, value)
}

// StrLen returns the length of the string at key.
func (c *Client) StrLen(key string) *Command {
	return c.Run(mapInt, STRLEN, key)
}

// Incr increments the integer at key by one.
func (c *Client) Incr(key string) *Command {
	return c.Run(mapInt, INCR, key)
}

// IncrBy increments the integer at key by delta.
func (c *Client) IncrBy(key string, delta int64) *Command {
	return c.Run(mapInt, INCRBY, key, delta)
}

// IncrByFloat increments the float at key by delta.
func (c *Client) IncrByFloat(key string, delta float64) *Command {
	return c.Run(mapFloat, INCRBYFLOAT, key, delta)
}

// Decr decrements the integer at key by one.
func (c *Client) Decr(key string) *Command {
	return c.Run(mapInt, DECR, key)
}

// DecrBy decrements the integer at key by delta.
func (c *Client) DecrBy(key string, delta int64) *Command {
	return c.Run(mapInt, DECRBY, key, delta)
}

// MGet returns the values of every key; missing keys yield nil
// elements.
func (c *Client) MGet(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, MGET)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(nil, args...)
}

// MSet sets every key/value pair at once.
func (c *Client) MSet(pairs map[string]any) *Command {
	args := make([]any, 0, len(pairs)*2+1)
	args = append(args, MSET)
	for k, v := range pairs {
		args = append(args, k, v)
	}
	return c.Run(mapText, args...)
}
