// Package dashboard exposes a PMR dashboard session over net/http.
//
// Pages render through the registered renderers (HTML, PDF and JSON). Every
// form action posts back to the component; successful actions redirect to the
// page they came from, or answer with the JSON view when the client asks for
// JSON. The portfolio search endpoint returns {"data": [...]} like other
// option endpoints.
package dashboard
