// Package icons maps the free-form icon identifiers found in diagram
// descriptions onto vector asset files.
//
// A descriptor is an ordered JSON (or YAML) object whose keys are regular
// expressions and whose values are asset paths relative to a base
// directory:
//
//	{
//	  "api.?gateway": "aws/networking/api-gateway.svg",
//	  "lambda|function": "aws\\compute\\lambda.svg"
//	}
//
// [Resolver.Resolve] searches the identifier with each pattern in
// declaration order and returns the first match's asset as an absolute
// path, or the fallback asset when nothing matches. Resolution never fails;
// all validation (descriptor and fallback present, patterns compile) happens
// once in [NewResolver].
package icons
