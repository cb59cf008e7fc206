// Stream and geospatial command wrappers.
package redwire

// XAdd appends an entry to the stream and returns its generated ID.
// Pass "*" as id to let the server generate one.
func (c *Client) XAdd(key, id string, fields map[string]any) *Command {
	args := make([]any, 0, len(fields)*2+3)
	args = append(args, XADD, key, id)
	for f, v := range fields {
		args = append(args, f, v)
	}
	return c.Run(mapText, args...)
}

// XLen returns the number of entries in the stream.
func (c *Client) XLen(key string) *Command {
	return c.Run(mapInt, XLEN, key)
}

// XRange returns the entries with IDs in [start, end].
func (c *Client) XRange(key, start, end string, count int64) *Command {
	var countArg, countVal any
	if count > 0 {
		countArg, countVal = "COUNT", count
	}
	return c.Run(mapStreamEntries, XRANGE, key, start, end, countArg, countVal)
}

// XRevRange is XRange in reverse order.
func (c *Client) XRevRange(key, end, start string, count int64) *Command {
	var countArg, countVal any
	if count > 0 {
		countArg, countVal = "COUNT", count
	}
	return c.Run(mapStreamEntries, XREVRANGE, key, end, start, countArg, countVal)
}

// XDel removes entries by ID and returns how many existed.
func (c *Client) XDel(key string, ids ...string) *Command {
	args := make([]any, 0, len(ids)+2)
	args = append(args, XDEL, key)
	for _, id := range ids {
		args = append(args, id)
	}
	return c.Run(mapInt, args...)
}

// XAck acknowledges group-delivered entries.
func (c *Client) XAck(key, group string, ids ...string) *Command {
	args := make([]any, 0, len(ids)+3)
	args = append(args, XACK, key, group)
	for _, id := range ids {
		args = append(args, id)
	}
	return c.Run(mapInt, args...)
}

// XTrim caps the stream at maxLen entries.
func (c *Client) XTrim(key string, maxLen int64) *Command {
	return c.Run(mapInt, XTRIM, key, "MAXLEN", maxLen)
}

// XInfoStream returns the stream's summary record.
func (c *Client) XInfoStream(key string) *Command {
	return c.Run(mapXInfo("STREAM"), XINFO, "STREAM", key)
}

// XInfoGroups returns the stream's consumer groups.
func (c *Client) XInfoGroups(key string) *Command {
	return c.Run(mapXInfo("GROUPS"), XINFO, "GROUPS", key)
}

// GeoAdd adds a named coordinate to the index at key.
func (c *Client) GeoAdd(key string, longitude, latitude float64, member any) *Command {
	return c.Run(mapInt, GEOADD, key, longitude, latitude, member)
}

// GeoDist returns the distance between two members in the given unit
// ("m", "km", "mi", "ft"), or nil when either member is absent.
func (c *Client) GeoDist(key string, member1, member2 any, unit string) *Command {
	var u any
	if unit != "" {
		u = unit
	}
	return c.Run(mapOptionalText, GEODIST, key, member1, member2, u)
}

// GeoPosOf returns the coordinates of the given members; unknown
// members yield nil elements.
func (c *Client) GeoPosOf(key string, members ...any) *Command {
	args := append([]any{GEOPOS, key}, members...)
	return c.Run(mapGeoPos, args...)
}
