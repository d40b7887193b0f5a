package clientgen

import "text/template"

func mustStub(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(body))
}

var phpSoapTemplate = mustStub("php-soap", `<?php
/**
 * {{.ServiceName}} SOAP client.
 *
 * Generated for the service at {{.Endpoint}}. Requires the PHP SOAP
 * extension.
 */
class {{.ServiceName}}_SOAP_Client {

	private $client;

	public function __construct($endpoint = '{{.Endpoint}}') {
		$this->client = new SoapClient($endpoint . '?wsdl', array(
			'exceptions' => true,
			'trace' => false,
		));
	}
{{range .Operations}}
	public function {{.Name}}({{phpArgs .Params}}) {
		return $this->client->__soapCall('{{.Name}}', array({{phpArgs .Params}}));
	}
{{end}}
}
`)

var phpJSONTemplate = mustStub("php-json", `<?php
/**
 * {{.ServiceName}} JSON client.
 *
 * Sends each call as a json-encoded envelope to {{.Endpoint}} and
 * returns the decoded result. Faults surface as exceptions.
 */
class {{.ServiceName}}_JSON_Client {

	private $endpoint;

	public function __construct($endpoint = '{{.Endpoint}}') {
		$this->endpoint = $endpoint;
	}

	private function invoke($operation, $params) {
		$envelope = json_encode(array('call' => $operation, 'param' => $params));
		$body = http_build_query(array('json' => $envelope));

		$context = stream_context_create(array('http' => array(
			'method' => 'POST',
			'header' => 'Content-Type: application/x-www-form-urlencoded',
			'content' => $body,
			'ignore_errors' => true,
		)));
		$raw = file_get_contents($this->endpoint, false, $context);
		if ($raw === false) {
			throw new Exception('request to ' . $this->endpoint . ' failed');
		}

		$decoded = json_decode($raw, true);
		if (is_array($decoded) && isset($decoded['success']) && $decoded['success'] === false) {
			throw new Exception($decoded['error']);
		}
		return $decoded['result'];
	}
{{range .Operations}}
	public function {{.Name}}({{phpArgs .Params}}) {
		return $this->invoke('{{.Name}}', array({{phpArgs .Params}}));
	}
{{end}}
}
`)

var jsJSONTemplate = mustStub("js-json", `/**
 * {{.ServiceName}} JSON client.
 *
 * Each method posts a JSON envelope to {{.Endpoint}} and invokes
 * callback(error, result) with the outcome.
 */
function {{.ServiceName}}_JSON_Client(endpoint) {
	this.endpoint = endpoint || '{{.Endpoint}}';
}

{{.ServiceName}}_JSON_Client.prototype.invoke = function (operation, params, callback) {
	var envelope = JSON.stringify({ call: operation, param: params });
	var request = new XMLHttpRequest();
	request.open('POST', this.endpoint, true);
	request.setRequestHeader('Content-Type', 'application/x-www-form-urlencoded');
	request.onreadystatechange = function () {
		if (request.readyState !== 4) {
			return;
		}
		var decoded;
		try {
			decoded = JSON.parse(request.responseText);
		} catch (err) {
			callback(err, null);
			return;
		}
		if (decoded && decoded.success === false) {
			callback(new Error(decoded.error), null);
			return;
		}
		callback(null, decoded.result);
	};
	request.send('json=' + encodeURIComponent(envelope));
};
{{range .Operations}}
{{$.ServiceName}}_JSON_Client.prototype.{{.Name}} = function ({{if .Params}}{{jsArgs .Params}}, {{end}}callback) {
	this.invoke('{{.Name}}', [{{jsArgs .Params}}], callback);
};
{{end}}`)

var phpXMLRPCTemplate = mustStub("php-xmlrpc", `<?php
/**
 * {{.ServiceName}} XML-RPC client.
 *
 * Encodes each call as an XML-RPC methodCall posted to {{.Endpoint}}.
 * Requires the PHP xmlrpc extension.
 */
class {{.ServiceName}}_XMLRPC_Client {

	private $endpoint;

	public function __construct($endpoint = '{{.Endpoint}}') {
		$this->endpoint = $endpoint;
	}

	private function invoke($operation, $params) {
		$payload = xmlrpc_encode_request($operation, $params);

		$context = stream_context_create(array('http' => array(
			'method' => 'POST',
			'header' => 'Content-Type: text/xml',
			'content' => $payload,
			'ignore_errors' => true,
		)));
		$raw = file_get_contents($this->endpoint, false, $context);
		if ($raw === false) {
			throw new Exception('request to ' . $this->endpoint . ' failed');
		}

		$decoded = xmlrpc_decode($raw);
		if (is_array($decoded) && xmlrpc_is_fault($decoded)) {
			throw new Exception($decoded['faultString'], $decoded['faultCode']);
		}
		return $decoded;
	}
{{range .Operations}}
	public function {{.Name}}({{phpArgs .Params}}) {
		return $this->invoke('{{.Name}}', array({{phpArgs .Params}}));
	}
{{end}}
}
`)

var phpHTTPTemplate = mustStub("php-http", `<?php
/**
 * {{.ServiceName}} HTTP client.
 *
 * Posts each call as form fields (call plus repeated param) to
 * {{.Endpoint}} and returns the plain-text response body.
 */
class {{.ServiceName}}_HTTP_Client {

	private $endpoint;

	public function __construct($endpoint = '{{.Endpoint}}') {
		$this->endpoint = $endpoint;
	}

	private function invoke($operation, $params) {
		$fields = array('call=' . rawurlencode($operation));
		foreach ($params as $param) {
			$fields[] = 'param[]=' . rawurlencode($param);
		}
		$body = implode('&', $fields);

		$context = stream_context_create(array('http' => array(
			'method' => 'POST',
			'header' => 'Content-Type: application/x-www-form-urlencoded',
			'content' => $body,
			'ignore_errors' => true,
		)));
		$raw = file_get_contents($this->endpoint, false, $context);
		if ($raw === false) {
			throw new Exception('request to ' . $this->endpoint . ' failed');
		}

		$decoded = json_decode($raw, true);
		if (is_array($decoded) && isset($decoded['success']) && $decoded['success'] === false) {
			throw new Exception($decoded['error']);
		}
		return $raw;
	}
{{range .Operations}}
	public function {{.Name}}({{phpArgs .Params}}) {
		return $this->invoke('{{.Name}}', array({{phpArgs .Params}}));
	}
{{end}}
}
`)

var phpRESTTemplate = mustStub("php-rest", `<?php
/**
 * {{.ServiceName}} REST client.
 *
 * Maps each call to a GET of {{.Endpoint}}/{{.ServiceName}}/Operation
 * followed by one path segment per argument.
 */
class {{.ServiceName}}_REST_Client {

	private $endpoint;

	public function __construct($endpoint = '{{.Endpoint}}') {
		$this->endpoint = $endpoint;
	}

	private function fetch($path) {
		$context = stream_context_create(array('http' => array(
			'method' => 'GET',
			'ignore_errors' => true,
		)));
		$raw = file_get_contents($this->endpoint . $path, false, $context);
		if ($raw === false) {
			throw new Exception('request to ' . $this->endpoint . ' failed');
		}

		$decoded = json_decode($raw, true);
		if (is_array($decoded) && isset($decoded['success']) && $decoded['success'] === false) {
			throw new Exception($decoded['error']);
		}
		return $decoded;
	}
{{range .Operations}}
	public function {{.Name}}({{phpArgs .Params}}) {
		return $this->fetch('/{{$.ServiceName}}/{{.Name}}' . {{restPath .Params}});
	}
{{end}}
}
`)
