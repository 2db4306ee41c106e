// Package types defines the JSON bodies written by the proxy for requests it
// could not forward.
//
// Every error is wrapped in an "error" object:
//
//	{
//	  "error": {
//	    "message": "dev server port is not known yet",
//	    "type": "server_error",
//	    "code": "backend_not_ready"
//	  }
//	}
//
// The HTTP status is derived from the type with ErrorDetail.HTTPStatusCode.
package types
