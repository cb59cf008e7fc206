// List command wrappers.
package redwire

// LPush prepends values and returns the new length.
func (c *Client) LPush(key string, values ...any) *Command {
	args := append([]any{LPUSH, key}, values...)
	return c.Run(mapInt, args...)
}

// RPush appends values and returns the new length.
func (c *Client) RPush(key string, values ...any) *Command {
	args := append([]any{RPUSH, key}, values...)
	return c.Run(mapInt, args...)
}

// LPushX prepends only if the list exists.
func (c *Client) LPushX(key string, value any) *Command {
	return c.Run(mapInt, LPUSHX, key, value)
}

// RPushX appends only if the list exists.
func (c *Client) RPushX(key string, value any) *Command {
	return c.Run(mapInt, RPUSHX, key, value)
}

// LPop removes and returns the head, or nil on an empty list.
func (c *Client) LPop(key string) *Command {
	return c.Run(mapOptionalText, LPOP, key)
}

// RPop removes and returns the tail, or nil on an empty list.
func (c *Client) RPop(key string) *Command {
	return c.Run(mapOptionalText, RPOP, key)
}

// BLPop blocks until a head element is available on any of the keys or
// the server-side timeout (in seconds, 0 meaning forever) elapses. The
// reply is [key, value], or nil on timeout. There is no client-side
// cancel; the timeout is the server's.
func (c *Client) BLPop(timeout int64, keys ...string) *Command {
	args := make([]any, 0, len(keys)+2)
	args = append(args, BLPOP)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, timeout)
	return c.Run(nil, args...)
}

// BRPop is BLPop for the tail end.
func (c *Client) BRPop(timeout int64, keys ...string) *Command {
	args := make([]any, 0, len(keys)+2)
	args = append(args, BRPOP)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, timeout)
	return c.Run(nil, args...)
}

// LIndex returns the element at index, or nil when out of range.
func (c *Client) LIndex(key string, index int64) *Command {
	return c.Run(mapOptionalText, LINDEX, key, index)
}

// LInsert inserts value before or after pivot.
func (c *Client) LInsert(key string, before bool, pivot, value any) *Command {
	where := "AFTER"
	if before {
		where = "BEFORE"
	}
	return c.Run(mapInt, LINSERT, key, where, pivot, value)
}

// LLen returns the list length.
func (c *Client) LLen(key string) *Command {
	return c.Run(mapInt, LLEN, key)
}

// LMove atomically moves an element between lists.
func (c *Client) LMove(source, destination, from, to string) *Command {
	return c.Run(mapOptionalText, LMOVE, source, destination, from, to)
}

// LPos returns the index of the first match, or nil when absent.
func (c *Client) LPos(key string, element any) *Command {
	return c.Run(nil, LPOS, key, element)
}

// LRange returns the elements at [start, stop].
func (c *Client) LRange(key string, start, stop int64) *Command {
	return c.Run(mapStrings, LRANGE, key, start, stop)
}

// LRem removes count occurrences of value.
func (c *Client) LRem(key string, count int64, value any) *Command {
	return c.Run(mapInt, LREM, key, count, value)
}

// LSet replaces the element at index.
func (c *Client) LSet(key string, index int64, value any) *Command {
	return c.Run(mapText, LSET, key, index, value)
}

// LTrim trims the list to [start, stop].
func (c *Client) LTrim(key string, start, stop int64) *Command {
	return c.Run(mapText, LTRIM, key, start, stop)
}
