package anchorage

// Version is this module's release version, used to build the default
// user-agent string sent on both the stream handshake and every
// request/response call.
const Version = "1.0.0"

const defaultUserAgent = "Anchorage/" + Version
