/*
Package templating renders tiered sponsor groups into the HTML fragment that
fills a document's managed region.

Rendering uses html/template, so sponsor names are escaped for whichever
context they land in (element text or attribute value) and URLs are checked
and normalized for attribute use. A default fragment template is embedded in
the package; a deployment can replace it with its own file, which must define
a template named "sponsors". Renderer reloads that file on Refresh without
being rebuilt.
*/
package templating
