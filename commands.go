/*
Redis command names as typed string constants.

The client surface (client.go, commands_*.go) builds every outbound
argument line from these constants rather than string literals. This
ensures type safety and provides intellisense support for command names,
and gives the dispatcher a single authoritative spelling to recognize
the transaction and reply-mode commands by.

Commands are organized into functional categories matching the official
Redis documentation structure. The constants follow the exact Redis
command names (case-sensitive) to ensure protocol compatibility. Only
the categories the typed surface wraps are catalogued here; Run accepts
any command name, catalogued or not.
*/
package redwire

// CommandType represents Redis command names as typed string constants.
type CommandType string

const (
	// Connection Commands - Basic server communication
	PING   CommandType = "PING" // Test server connectivity
	ECHO   CommandType = "ECHO" // Echo the given string
	QUIT   CommandType = "QUIT" // Close the connection
	AUTH   CommandType = "AUTH" // Authenticate the connection
	HELLO  CommandType = "HELLO"
	RESET  CommandType = "RESET"
	SELECT CommandType = "SELECT"
	CLIENT CommandType = "CLIENT"

	// String Commands - Operations on string values
	APPEND      CommandType = "APPEND"      // Append a value to a key
	DECR        CommandType = "DECR"        // Decrement the integer value of a key by 1
	DECRBY      CommandType = "DECRBY"      // Decrement the integer value of a key by the given amount
	GET         CommandType = "GET"         // Get the value of a key
	GETDEL      CommandType = "GETDEL"      // Get the value of a key and delete the key
	GETRANGE    CommandType = "GETRANGE"    // Get a substring of the string stored at a key
	GETSET      CommandType = "GETSET"      // Set the value of a key and return its old value
	INCR        CommandType = "INCR"        // Increment the integer value of a key by 1
	INCRBY      CommandType = "INCRBY"      // Increment the integer value of a key by the given amount
	INCRBYFLOAT CommandType = "INCRBYFLOAT" // Increment the float value of a key by the given amount
	MGET        CommandType = "MGET"        // Get the values of all the given keys
	MSET        CommandType = "MSET"        // Set multiple keys to multiple values
	MSETNX      CommandType = "MSETNX"      // Set multiple keys to multiple values, only if none exist
	PSETEX      CommandType = "PSETEX"
	SET         CommandType = "SET"
	SETEX       CommandType = "SETEX"
	SETNX       CommandType = "SETNX"
	SETRANGE    CommandType = "SETRANGE"
	STRLEN      CommandType = "STRLEN"

	// Hash Commands
	HDEL         CommandType = "HDEL"
	HEXISTS      CommandType = "HEXISTS"
	HGET         CommandType = "HGET"
	HGETALL      CommandType = "HGETALL"
	HINCRBY      CommandType = "HINCRBY"
	HINCRBYFLOAT CommandType = "HINCRBYFLOAT"
	HKEYS        CommandType = "HKEYS"
	HLEN         CommandType = "HLEN"
	HMGET        CommandType = "HMGET"
	HRANDFIELD   CommandType = "HRANDFIELD"
	HSCAN        CommandType = "HSCAN"
	HSET         CommandType = "HSET"
	HSETNX       CommandType = "HSETNX"
	HSTRLEN      CommandType = "HSTRLEN"
	HVALS        CommandType = "HVALS"

	// List Commands
	BLPOP   CommandType = "BLPOP"
	BRPOP   CommandType = "BRPOP"
	LINDEX  CommandType = "LINDEX"
	LINSERT CommandType = "LINSERT"
	LLEN    CommandType = "LLEN"
	LMOVE   CommandType = "LMOVE"
	LPOP    CommandType = "LPOP"
	LPOS    CommandType = "LPOS"
	LPUSH   CommandType = "LPUSH"
	LPUSHX  CommandType = "LPUSHX"
	LRANGE  CommandType = "LRANGE"
	LREM    CommandType = "LREM"
	LSET    CommandType = "LSET"
	LTRIM   CommandType = "LTRIM"
	RPOP    CommandType = "RPOP"
	RPUSH   CommandType = "RPUSH"
	RPUSHX  CommandType = "RPUSHX"

	// Set Commands
	SADD        CommandType = "SADD"
	SCARD       CommandType = "SCARD"
	SDIFF       CommandType = "SDIFF"
	SINTER      CommandType = "SINTER"
	SISMEMBER   CommandType = "SISMEMBER"
	SMEMBERS    CommandType = "SMEMBERS"
	SMOVE       CommandType = "SMOVE"
	SPOP        CommandType = "SPOP"
	SRANDMEMBER CommandType = "SRANDMEMBER"
	SREM        CommandType = "SREM"
	SSCAN       CommandType = "SSCAN"
	SUNION      CommandType = "SUNION"

	// Sorted Set Commands
	ZADD          CommandType = "ZADD"
	ZCARD         CommandType = "ZCARD"
	ZCOUNT        CommandType = "ZCOUNT"
	ZINCRBY       CommandType = "ZINCRBY"
	ZPOPMAX       CommandType = "ZPOPMAX"
	ZPOPMIN       CommandType = "ZPOPMIN"
	ZRANGE        CommandType = "ZRANGE"
	ZRANGEBYSCORE CommandType = "ZRANGEBYSCORE"
	ZRANK         CommandType = "ZRANK"
	ZREM          CommandType = "ZREM"
	ZREVRANGE     CommandType = "ZREVRANGE"
	ZREVRANK      CommandType = "ZREVRANK"
	ZSCAN         CommandType = "ZSCAN"
	ZSCORE        CommandType = "ZSCORE"

	// Stream Commands
	XACK      CommandType = "XACK"
	XADD      CommandType = "XADD"
	XDEL      CommandType = "XDEL"
	XINFO     CommandType = "XINFO"
	XLEN      CommandType = "XLEN"
	XRANGE    CommandType = "XRANGE"
	XREAD     CommandType = "XREAD"
	XREVRANGE CommandType = "XREVRANGE"
	XTRIM     CommandType = "XTRIM"

	// Geospatial Commands
	GEOADD  CommandType = "GEOADD"
	GEODIST CommandType = "GEODIST"
	GEOPOS  CommandType = "GEOPOS"

	// Pub/Sub Commands
	PSUBSCRIBE   CommandType = "PSUBSCRIBE"
	PUBLISH      CommandType = "PUBLISH"
	PUNSUBSCRIBE CommandType = "PUNSUBSCRIBE"
	SUBSCRIBE    CommandType = "SUBSCRIBE"
	UNSUBSCRIBE  CommandType = "UNSUBSCRIBE"

	// Transaction Commands
	DISCARD CommandType = "DISCARD"
	EXEC    CommandType = "EXEC"
	MULTI   CommandType = "MULTI"
	UNWATCH CommandType = "UNWATCH"
	WATCH   CommandType = "WATCH"

	// Scripting Commands
	EVAL    CommandType = "EVAL"
	EVALSHA CommandType = "EVALSHA"
	SCRIPT  CommandType = "SCRIPT"

	// Server Commands
	CONFIG   CommandType = "CONFIG"
	DBSIZE   CommandType = "DBSIZE"
	FLUSHALL CommandType = "FLUSHALL"
	FLUSHDB  CommandType = "FLUSHDB"
	INFO     CommandType = "INFO"
	MONITOR  CommandType = "MONITOR"
	TIME     CommandType = "TIME"

	// Cluster Commands - surfaced individually, but the client is
	// single-connection: no slot routing happens on this side.
	ASKING    CommandType = "ASKING"
	CLUSTER   CommandType = "CLUSTER"
	READONLY  CommandType = "READONLY"
	READWRITE CommandType = "READWRITE"

	// Generic Commands - Key management
	COPY      CommandType = "COPY"
	DEL       CommandType = "DEL"
	EXISTS    CommandType = "EXISTS"
	EXPIRE    CommandType = "EXPIRE"
	KEYS      CommandType = "KEYS"
	PERSIST   CommandType = "PERSIST"
	PEXPIRE   CommandType = "PEXPIRE"
	PTTL      CommandType = "PTTL"
	RANDOMKEY CommandType = "RANDOMKEY"
	RENAME    CommandType = "RENAME"
	RENAMENX  CommandType = "RENAMENX"
	SCAN      CommandType = "SCAN"
	TOUCH     CommandType = "TOUCH"
	TTL       CommandType = "TTL"
	TYPE      CommandType = "TYPE"
	UNLINK    CommandType = "UNLINK"
)
