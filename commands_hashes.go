// Hash command wrappers.
package redwire

// HSet sets field to value in the hash at key.
func (c *Client) HSet(key, field string, value any) *Command {
	return c.Run(mapInt, HSET, key, field, value)
}

// HSetNX sets field only if it does not yet exist in the hash.
func (c *Client) HSetNX(key, field string, value any) *Command {
	return c.Run(mapInt, HSETNX, key, field, value)
}

// HGet returns the value of field, or nil if absent.
func (c *Client) HGet(key, field string) *Command {
	return c.Run(mapOptionalText, HGET, key, field)
}

// HGetAll returns the whole hash as a field-to-value map.
func (c *Client) HGetAll(key string) *Command {
	return c.Run(mapStringMap, HGETALL, key)
}

// HMGet returns the values of the given fields; absent fields yield
// nil elements.
func (c *Client) HMGet(key string, fields ...string) *Command {
	args := make([]any, 0, len(fields)+2)
	args = append(args, HMGET, key)
	for _, f := range fields {
		args = append(args, f)
	}
	return c.Run(nil, args...)
}

// HDel removes the given fields and returns how many existed.
func (c *Client) HDel(key string, fields ...string) *Command {
	args := make([]any, 0, len(fields)+2)
	args = append(args, HDEL, key)
	for _, f := range fields {
		args = append(args, f)
	}
	return c.Run(mapInt, args...)
}

// HExists reports whether field exists in the hash.
func (c *Client) HExists(key, field string) *Command {
	return c.Run(mapInt, HEXISTS, key, field)
}

// HIncrBy increments the integer at field by delta.
func (c *Client) HIncrBy(key, field string, delta int64) *Command {
	return c.Run(mapInt, HINCRBY, key, field, delta)
}

// HIncrByFloat increments the float at field by delta.
func (c *Client) HIncrByFloat(key, field string, delta float64) *Command {
	return c.Run(mapFloat, HINCRBYFLOAT, key, field, delta)
}

// HKeys returns every field name in the hash.
func (c *Client) HKeys(key string) *Command {
	return c.Run(mapStrings, HKEYS, key)
}

// HVals returns every value in the hash.
func (c *Client) HVals(key string) *Command {
	return c.Run(mapStrings, HVALS, key)
}

// HLen returns the number of fields in the hash.
func (c *Client) HLen(key string) *Command {
	return c.Run(mapInt, HLEN, key)
}

// HStrLen returns the length of the value at field.
func (c *Client) HStrLen(key, field string) *Command {
	return c.Run(mapInt, HSTRLEN, key, field)
}

// HScan iterates the hash; the page's Keys alternate field and value.
func (c *Client) HScan(key string, cursor uint64, match string, count int64) *Command {
	var matchArg, matchVal, countArg, countVal any
	if match != "" {
		matchArg, matchVal = "MATCH", match
	}
	if count > 0 {
		countArg, countVal = "COUNT", count
	}
	return c.Run(mapScan, HSCAN, key, cursor, matchArg, matchVal, countArg, countVal)
}
