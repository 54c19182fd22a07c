/*Package api provides the REST interface for workflow hosts to run NETPIE operations

The API provides the following REST routes:
	GET  /health
	POST /operations/{resource}/{operation}
	POST /credentials/{name}/test

An operation request carries a whole batch of items. Example:
  curl -X POST ..../operations/shadow/get -d '{
	"continueOnFail": true,
	"items": [
	  {"parameters": {"alias": "led"}},
	  {"parameters": {"alias": "temperature", "options": {"timeout": 2500}}}
	]
  }'
  {
	"records": [
	  {"json": {"alias": "led", "value": "on"}, "pairedItem": 0},
	  {"json": {"message": "...", "statusCode": 404, "hint": "..."}, "pairedItem": 1}
	]
  }

Request bodies which do not match the batch request schema are rejected with
400 Bad Request. When continueOnFail is false, the first failing item aborts
the batch with 422 Unprocessable Entity and a body with error, itemIndex, hint
and message.

A credential test answers 204 No Content when NETPIE accepted the credential,
404 Not Found for unknown credential names and 502 Bad Gateway otherwise.

When the API is built with a JWT secret, operation and credential routes
require an HS256 signed bearer token.

*/
package api
