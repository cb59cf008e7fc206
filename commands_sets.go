// Set command wrappers.
package redwire

// SAdd adds members and returns how many were new.
func (c *Client) SAdd(key string, members ...any) *Command {
	args := append([]any{SADD, key}, members...)
	return c.Run(mapInt, args...)
}

// SRem removes members and returns how many existed.
func (c *Client) SRem(key string, members ...any) *Command {
	args := append([]any{SREM, key}, members...)
	return c.Run(mapInt, args...)
}

// SCard returns the set's cardinality.
func (c *Client) SCard(key string) *Command {
	return c.Run(mapInt, SCARD, key)
}

// SIsMember reports whether member is in the set.
func (c *Client) SIsMember(key string, member any) *Command {
	return c.Run(mapInt, SISMEMBER, key, member)
}

// SMembers returns every member.
func (c *Client) SMembers(key string) *Command {
	return c.Run(mapStrings, SMEMBERS, key)
}

// SMove moves member between sets.
func (c *Client) SMove(source, destination string, member any) *Command {
	return c.Run(mapInt, SMOVE, source, destination, member)
}

// SPop removes and returns a random member, or nil on an empty set.
func (c *Client) SPop(key string) *Command {
	return c.Run(mapOptionalText, SPOP, key)
}

// SRandMember returns a random member without removing it.
func (c *Client) SRandMember(key string) *Command {
	return c.Run(mapOptionalText, SRANDMEMBER, key)
}

// SDiff returns the members of the first set not in the others.
func (c *Client) SDiff(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, SDIFF)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapStrings, args...)
}

// SInter returns the intersection of the sets.
func (c *Client) SInter(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, SINTER)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapStrings, args...)
}

// SUnion returns the union of the sets.
func (c *Client) SUnion(keys ...string) *Command {
	args := make([]any, 0, len(keys)+1)
	args = append(args, SUNION)
	for _, k := range keys {
		args = append(args, k)
	}
	return c.Run(mapStrings, args...)
}

// SScan iterates the set one page at a time.
func (c *Client) SScan(key string, cursor uint64, match string, count int64) *Command {
	var matchArg, matchVal, countArg, countVal any
	if match != "" {
		matchArg, matchVal = "MATCH", match
	}
	if count > 0 {
		countArg, countVal = "COUNT", count
	}
	return c.Run(mapScan, SSCAN, key, cursor, matchArg, matchVal, countArg, countVal)
}
