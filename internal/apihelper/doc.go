// Package apihelper forwards a declarative HTTP request to a remote server and
// marshals the response for the desktop frontend.
//
// A call runs strictly in order: the TLS options are turned into trust
// settings (reading at most a certificate, a private key and a CA bundle),
// a client is selected for those settings, headers and method are validated,
// the request is sent once and the full response is read. Any failure stops
// the call with an *Error whose Kind identifies the stage.
package apihelper
