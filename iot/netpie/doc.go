/*Package netpie runs batches of workflow items against the NETPIE device API

Two operations are supported:

	shadow.get       GET  {base}/shadow/data?alias={alias}
	message.publish  PUT  {base}/message?topic={topic}

Every item of a batch runs through the same pipeline: its parameters are
resolved and validated, a RequestDescriptor is built, a Dispatcher sends the
request with the device credential, and the response is optionally
simplified. Items are processed one after another, in input order, and every
item yields exactly one OutputRecord, paired with its input index.

Parameters

	shadow.get       alias, simplify (default true), options.timeout (ms, default 15000)
	message.publish  topic, payload, simplify (default true), options.timeout,
	                 options.contentType (text/plain or application/json, default text/plain)

Simplified output

	shadow.get       {"alias": "led", "value": "on"}
	message.publish  {"published": true, "topic": "led", "result": "ok"}

With simplify set to false, the raw API response is returned.

Failures

When the execution has ContinueOnFail set, a failing item yields a record
like

	{"message": "...", "statusCode": 401, "hint": "Failed to read shadow data for item 1. ..."}

and the batch goes on. Otherwise Execute stops at the failing item and returns
an *OperationError.

The AuthenticatedDispatcher authorizes requests with the header

	Authorization: Device {clientId}:{token}

*/
package netpie
