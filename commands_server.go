// Connection, server, scripting, publish, and cluster command wrappers.
package redwire

// Ping checks connectivity; the reply is "PONG", or message echoed
// back when given.
func (c *Client) Ping(message string) *Command {
	var msg any
	if message != "" {
		msg = message
	}
	return c.Run(mapText, PING, msg)
}

// Echo returns message unchanged.
func (c *Client) Echo(message string) *Command {
	return c.Run(mapText, ECHO, message)
}

// Auth authenticates the connection. Run it first when handing the
// connection on to a PubSub mode afterwards.
func (c *Client) Auth(password string) *Command {
	return c.Run(mapText, AUTH, password)
}

// Select switches the logical database.
func (c *Client) Select(index int64) *Command {
	return c.Run(mapText, SELECT, index)
}

// Quit asks the server to close the connection after replying.
func (c *Client) Quit() *Command {
	return c.Run(mapText, QUIT)
}

// Publish posts message to channel and returns the receiver count.
func (c *Client) Publish(channel string, message any) *Command {
	return c.Run(mapInt, PUBLISH, channel, message)
}

// ConfigGet returns the parameters matching pattern as a map.
func (c *Client) ConfigGet(pattern string) *Command {
	return c.Run(mapStringMap, CONFIG, "GET", pattern)
}

// ConfigSet sets one configuration parameter.
func (c *Client) ConfigSet(parameter, value string) *Command {
	return c.Run(mapText, CONFIG, "SET", parameter, value)
}

// DBSize returns the number of keys in the selected database.
func (c *Client) DBSize() *Command {
	return c.Run(mapInt, DBSIZE)
}

// FlushDB removes every key in the selected database.
func (c *Client) FlushDB() *Command {
	return c.Run(mapText, FLUSHDB)
}

// FlushAll removes every key in every database.
func (c *Client) FlushAll() *Command {
	return c.Run(mapText, FLUSHALL)
}

// Info returns the server's status report, optionally one section.
func (c *Client) Info(section string) *Command {
	var sec any
	if section != "" {
		sec = section
	}
	return c.Run(mapText, INFO, sec)
}

// Time returns the server clock as [seconds, microseconds].
func (c *Client) Time() *Command {
	return c.Run(mapStrings, TIME)
}

// Eval runs a server-side script with the given keys and extra
// arguments.
func (c *Client) Eval(script string, keys []string, args ...any) *Command {
	line := make([]any, 0, len(keys)+len(args)+3)
	line = append(line, EVAL, script, int64(len(keys)))
	for _, k := range keys {
		line = append(line, k)
	}
	line = append(line, args...)
	return c.Run(nil, line...)
}

// EvalSHA runs a cached script by digest.
func (c *Client) EvalSHA(sha1 string, keys []string, args ...any) *Command {
	line := make([]any, 0, len(keys)+len(args)+3)
	line = append(line, EVALSHA, sha1, int64(len(keys)))
	for _, k := range keys {
		line = append(line, k)
	}
	line = append(line, args...)
	return c.Run(nil, line...)
}

// ScriptLoad caches a script and returns its digest.
func (c *Client) ScriptLoad(script string) *Command {
	return c.Run(mapText, SCRIPT, "LOAD", script)
}

// Cluster commands are surfaced for completeness; this client stays
// single-connection and does no slot routing of its own.

// ClusterInfo returns the cluster status report.
func (c *Client) ClusterInfo() *Command {
	return c.Run(mapText, CLUSTER, "INFO")
}

// ReadOnly enables reads from a replica.
func (c *Client) ReadOnly() *Command {
	return c.Run(mapText, READONLY)
}

// ReadWrite reverts ReadOnly.
func (c *Client) ReadWrite() *Command {
	return c.Run(mapText, READWRITE)
}

// Asking signals a redirected cluster command follows.
func (c *Client) Asking() *Command {
	return c.Run(mapText, ASKING)
}
