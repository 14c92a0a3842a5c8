// oidcagent provides the relying party side of the OpenID Connect
// authorization code flow for server-rendered web applications.
//
// See README.md
package oidcagent
