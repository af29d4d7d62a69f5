// Package models is the shared data contract for the todo project/task API.
//
// Every enumeration, record shape, request shape and response envelope lives
// in this one package so that servers, clients and tooling import a single
// vocabulary. Project and Task reference each other and must stay together.
//
// Wire rules: enumeration values serialize as their literal tokens, timestamps
// as RFC 3339 strings, and optional fields are pointers tagged omitempty so an
// absent field is omitted rather than sent as null.
package models
