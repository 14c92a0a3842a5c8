/*
callback is a package that provides http.HandlerFuncs for the three
redirects of the OIDC authorization code flow: starting a login
(Login), handling the provider's authorization response (AuthCode) and
ending the session (Logout).

The handlers own nothing themselves: the oidc.Provider does the flow
work, a SessionStoreFunc supplies the request's session store, and the
Success/ErrorResponseFunc render whatever response the host application
wants.
*/
package callback
