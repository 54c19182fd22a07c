// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package iot provides access to remote IoT device platforms

The netpie package talks to the NETPIE device API: it reads device shadow
values and publishes messages to device topics, for whole batches of workflow
items at once. The api package exposes these operations as a RESTful interface
for workflow hosts.

Both operations are also available for single calls through the ShadowReader
and MessagePublisher interfaces.

*/
package iot
