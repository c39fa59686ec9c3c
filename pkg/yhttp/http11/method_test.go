package http11

import "testing"

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Method
	}{
		{"GET", "GET", MethodGET},
		{"HEAD", "HEAD", MethodHEAD},
		{"POST", "POST", MethodPOST},
		{"PUT", "PUT", MethodPUT},
		{"DELETE", "DELETE", MethodDELETE},
		{"PATCH", "PATCH", MethodPATCH},
		{"lowercase rejected", "get", MethodUnknown},
		{"not in six-entry table", "OPTIONS", MethodUnknown},
		{"empty", "", MethodUnknown},
		{"partial", "GE", MethodUnknown},
		{"trailing garbage", "GETX", MethodUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMethod([]byte(tt.in)); got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMethodString(t *testing.T) {
	tests := []struct {
		m    Method
		want string
	}{
		{MethodGET, "GET"},
		{MethodHEAD, "HEAD"},
		{MethodPOST, "POST"},
		{MethodPUT, "PUT"},
		{MethodDELETE, "DELETE"},
		{MethodPATCH, "PATCH"},
		{MethodUnknown, ""},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Method(%d).String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}
