// Sorted-set command wrappers.
package redwire

// ZMember pairs a member with its score for ZAdd.
type ZMember struct {
	Score  float64
	Member any
}

// ZAdd adds the scored members and returns how many were new.
func (c *Client) ZAdd(key string, members ...ZMember) *Command {
	args := make([]any, 0, len(members)*2+2)
	args = append(args, ZADD, key)
	for _, m := range members {
		args = append(args, m.Score, m.Member)
	}
	return c.Run(mapInt, args...)
}

// ZRem removes members and returns how many existed.
func (c *Client) ZRem(key string, members ...any) *Command {
	args := append([]any{ZREM, key}, members...)
	return c.Run(mapInt, args...)
}

// ZCard returns the sorted set's cardinality.
func (c *Client) ZCard(key string) *Command {
	return c.Run(mapInt, ZCARD, key)
}

// ZCount counts the members with scores in [min, max].
func (c *Client) ZCount(key, min, max string) *Command {
	return c.Run(mapInt, ZCOUNT, key, min, max)
}

// ZScore returns member's score, or nil when absent.
func (c *Client) ZScore(key string, member any) *Command {
	return c.Run(nil, ZSCORE, key, member)
}

// ZIncrBy increments member's score by delta.
func (c *Client) ZIncrBy(key string, delta float64, member any) *Command {
	return c.Run(mapFloat, ZINCRBY, key, delta, member)
}

// ZRank returns member's ascending rank, or nil when absent.
func (c *Client) ZRank(key string, member any) *Command {
	return c.Run(nil, ZRANK, key, member)
}

// ZRevRank returns member's descending rank, or nil when absent.
func (c *Client) ZRevRank(key string, member any) *Command {
	return c.Run(nil, ZREVRANK, key, member)
}

// ZRange returns the members at rank [start, stop], optionally with
// their scores interleaved.
func (c *Client) ZRange(key string, start, stop int64, withScores bool) *Command {
	var ws any
	if withScores {
		ws = "WITHSCORES"
	}
	return c.Run(mapStrings, ZRANGE, key, start, stop, ws)
}

// ZRevRange is ZRange in descending order.
func (c *Client) ZRevRange(key string, start, stop int64, withScores bool) *Command {
	var ws any
	if withScores {
		ws = "WITHSCORES"
	}
	return c.Run(mapStrings, ZREVRANGE, key, start, stop, ws)
}

// ZRangeByScore returns the members with scores in [min, max].
func (c *Client) ZRangeByScore(key, min, max string) *Command {
	return c.Run(mapStrings, ZRANGEBYSCORE, key, min, max)
}

// ZPopMax removes and returns the highest-scored member and its score.
func (c *Client) ZPopMax(key string) *Command {
	return c.Run(mapStrings, ZPOPMAX, key)
}

// ZPopMin removes and returns the lowest-scored member and its score.
func (c *Client) ZPopMin(key string) *Command {
	return c.Run(mapStrings, ZPOPMIN, key)
}

// ZScan iterates the sorted set; the page's Keys alternate member and
// score.
func (c *Client) ZScan(key string, cursor uint64, match string, count int64) *Command {
	var matchArg, matchVal, countArg, countVal any
	if match != "" {
		matchArg, matchVal = "MATCH", match
	}
	if count > 0 {
		countArg, countVal = "COUNT", count
	}
	return c.Run(mapScan, ZSCAN, key, cursor, matchArg, matchVal, countArg, countVal)
}
