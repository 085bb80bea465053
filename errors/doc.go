// Package errors defines the canonical error contract exposed to API clients.
//
// ErrorCode is a closed set of stable identifiers. Error is an immutable
// record of a code plus an optional field and message. Clients always see the
// generic message "An error occurred"; the code and any curated detail travel
// in the extensions object:
//
//	{
//	  "message": "An error occurred",
//	  "extensions": {"code": "UNIQUE", "field": "email", "message": "A email with a@b.c already exists"}
//	}
//
// Use package translate to turn collaborator failures into Error values.
package errors
