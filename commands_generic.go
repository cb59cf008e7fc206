// Generic key-management command wrappers.
package redwire

// Del removes keys and returns how many existed.
func (c *Client) Del(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, DEL)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapInt, args...)
}

// Unlink is Del with asynchronous reclamation on the server.
func (c *Client) Unlink(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, UNLINK)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapInt, args...)
}

// Exists counts how many of the keys exist.
func (c *Client) Exists(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, EXISTS)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapInt, args...)
}

// Expire sets key's TTL in seconds.
func (c *Client) Expire(key string, seconds int64) *Command {
	return c.Run(mapInt, EXPIRE, key, seconds)
}

// PExpire sets key's TTL in milliseconds.
func (c *Client) PExpire(key string, milliseconds int64) *Command {
	return c.Run(mapInt, PEXPIRE, key, milliseconds)
}

// TTL returns key's TTL in seconds, -1 with no expiry, -2 when absent.
func (c *Client) TTL(key string) *Command {
	return c.Run(mapInt, TTL, key)
}

// PTTL is TTL in milliseconds.
func (c *Client) PTTL(key string) *Command {
	return c.Run(mapInt, PTTL, key)
}

// Persist drops key's TTL.
func (c *Client) Persist(key string) *Command {
	return c.Run(mapInt, PERSIST, key)
}

// Keys returns every key matching pattern. SCAN is the non-blocking
// alternative on large keyspaces.
func (c *Client) Keys(pattern string) *Command {
	return c.Run(mapStrings, KEYS, pattern)
}

// Scan iterates the keyspace one page at a time.
func (c *Client) Scan(cursor uint64, match string, count int64) *Command {
	var matchArg, matchVal, countArg, countVal any
	if match != "" {
		matchArg, matchVal = "MATCH", match
	}
	if count > 0 {
		countArg, countVal = "COUNT", count
	}
	return c.Run(mapScan, SCAN, cursor, matchArg, matchVal, countArg, countVal)
}

// RandomKey returns a random key, or nil on an empty database.
func (c *Client) RandomKey() *Command {
	return c.Run(mapOptionalText, RANDOMKEY)
}

// Rename renames key to newKey, overwriting any existing value.
func (c *Client) Rename(key, newKey string) *Command {
	return c.Run(mapText, RENAME, key, newKey)
}

// RenameNX renames only when newKey does not exist.
func (c *Client) RenameNX(key, newKey string) *Command {
	return c.Run(mapInt, RENAMENX, key, newKey)
}

// Copy copies key to destination.
func (c *Client) Copy(source, destination string, replace bool) *Command {
	var rep any
	if replace {
		rep = "REPLACE"
	}
	return c.Run(mapInt, COPY, source, destination, rep)
}

// Touch updates the access time of keys and returns how many existed.
func (c *Client) Touch(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, TOUCH)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapInt, args...)
}

// TypeOf returns the storage type of key ("string", "list", ...).
func (c *Client) TypeOf(key string) *Command {
	return c.Run(mapText, TYPE, key)
}
