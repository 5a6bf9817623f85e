package python

const fileTemplates = `
{{- define "pyproject" -}}
# {{.Header}}
[project]
name = {{quote .Dist}}
version = {{quote .Version}}
description = {{quote (printf "%s JSON-RPC client" .Title)}}
requires-python = {{quote .RequiresPython}}
dependencies = []

[build-system]
requires = ["setuptools>=61"]
build-backend = "setuptools.build_meta"

[tool.setuptools]
packages = [{{quote .Package}}]
{{end}}

{{- define "init" -}}
# {{.Header}}
"""{{doc .Title}} JSON-RPC client."""

from .client import {{.ClientName}}, RPCError
{{- if .Models}}
from .models import (
{{- range .Models}}
    {{.}},
{{- end}}
)
{{- end}}

__all__ = [
    {{quote .ClientName}},
    "RPCError",
{{- range .Models}}
    {{quote .}},
{{- end}}
]
{{end}}

{{- define "models" -}}
# {{.Header}}
"""Types for {{doc .Title}} {{doc .Version}}."""

from __future__ import annotations

from typing import Any, Dict, List, Literal, Optional, TypedDict, Union  # noqa: F401
{{.Body}}
{{- end}}

{{- define "client" -}}
# {{.Header}}
"""{{doc .Title}} JSON-RPC client."""

from __future__ import annotations

import itertools
import json
import urllib.request
from typing import Any, Dict, List, Optional, Union  # noqa: F401
{{- if .Models}}

from .models import (  # noqa: F401
{{- range .Models}}
    {{.}},
{{- end}}
)
{{- end}}

DEFAULT_URL = {{quote .ServerURL}}


class RPCError(Exception):
    """Error object returned by a JSON-RPC server."""

    def __init__(self, code: int, message: str, data: Any = None) -> None:
        super().__init__(f"rpc error {code}: {message}")
        self.code = code
        self.message = message
        self.data = data


class {{.ClientName}}:
    """Client for {{doc .Title}} {{doc .Version}}."""

    def __init__(
        self,
        url: str = DEFAULT_URL,
        headers: Optional[Dict[str, str]] = None,
        timeout: float = 30.0,
    ) -> None:
        self.url = url
        self.headers = {"Content-Type": "application/json", **(headers or {})}
        self.timeout = timeout
        self._ids = itertools.count(1)

    def _call(self, method: str, params: Any) -> Any:
        payload = {"jsonrpc": "2.0", "id": next(self._ids), "method": method, "params": params}
        request = urllib.request.Request(
            self.url,
            data=json.dumps(payload).encode("utf-8"),
            headers=self.headers,
            method="POST",
        )
        with urllib.request.urlopen(request, timeout=self.timeout) as response:
            body = json.loads(response.read().decode("utf-8"))
        error = body.get("error")
        if error is not None:
            raise RPCError(error.get("code", 0), error.get("message", ""), error.get("data"))
        return body.get("result")
{{.Body}}
{{- end}}
`
