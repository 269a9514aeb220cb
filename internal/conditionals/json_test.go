// internal/conditionals/json_test.go
package conditionals

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/civickit/civickit/internal/types"
)

func TestExprJSON_Decode(t *testing.T) {
	tests := []struct {
		name string
		data string
		form types.FormData
		want bool
	}{
		{
			name: "field equality",
			data: `{"type":"field","field":"informantType","comparison":"eq","value":"MOTHER"}`,
			form: types.FormData{"informantType": "MOTHER"},
			want: true,
		},
		{
			name: "and of comparisons",
			data: `{"type":"and","clauses":[
				{"type":"field","field":"country","comparison":"eq","value":"FAR"},
				{"type":"field","field":"district","comparison":"undefined"}]}`,
			form: types.FormData{"country": "FAR"},
			want: true,
		},
		{
			name: "not wrapper",
			data: `{"type":"not","clause":{"type":"field","field":"x","comparison":"undefined"}}`,
			form: types.FormData{"x": "set"},
			want: true,
		},
		{
			name: "date comparison",
			data: `{"type":"field","field":"dob","comparison":"dateAfter","value":"2000-01-01"}`,
			form: types.FormData{"dob": "2000-01-01"},
			want: true,
		},
		{
			name: "inArray membership",
			data: `{"type":"or","clauses":[{"type":"field","field":"t","comparison":"inArray","values":["a","b"]}]}`,
			form: types.FormData{"t": "b"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Expr
			if err := json.Unmarshal([]byte(tt.data), &e); err != nil {
				t.Fatalf("Unmarshal() error = %v, want nil", err)
			}
			if got := Evaluate(e, Parameters{Form: tt.form}); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExprJSON_RoundTrip(t *testing.T) {
	exprs := []Expr{
		And(),
		Or(Field("a").IsEqualTo("x"), Not(Field("b").IsUndefined())),
		Field("dob").IsAfter().Date("1990-05-05"),
		Field("dob").IsBefore().Date("1990-05-05"),
		Field("type").InArray("BIRTH", "DEATH"),
	}

	form := types.FormData{"a": "x", "dob": "1990-05-05", "type": "DEATH"}

	for _, e := range exprs {
		b, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("Marshal(%+v) error = %v", e, err)
		}
		var back Expr
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", b, err)
		}
		p := Parameters{Form: form}
		if Evaluate(e, p) != Evaluate(back, p) {
			t.Errorf("round trip changed semantics for %s", b)
		}
	}
}

func TestExprJSON_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "unknown node tag",
			data:    `{"type":"xor","clauses":[]}`,
			wantErr: types.ErrUnknownOperator,
		},
		{
			name:    "unknown comparison tag",
			data:    `{"type":"field","field":"x","comparison":"matches","value":"a"}`,
			wantErr: types.ErrUnknownOperator,
		},
		{
			name:    "too many inArray values",
			data:    `{"type":"field","field":"x","comparison":"inArray","values":[` + strings.Repeat(`"v",`, types.MaxInArrayValues) + `"v"]}`,
			wantErr: types.ErrTooManyValues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Expr
			err := json.Unmarshal([]byte(tt.data), &e)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExprJSON_DepthLimit(t *testing.T) {
	data := `{"type":"field","field":"x","comparison":"undefined"}`
	for i := 0; i < types.MaxExpressionDepth; i++ {
		data = `{"type":"not","clause":` + data + `}`
	}

	var e Expr
	err := json.Unmarshal([]byte(data), &e)
	if !errors.Is(err, types.ErrExpressionTooDeep) {
		t.Errorf("Unmarshal() error = %v, want ErrExpressionTooDeep", err)
	}
}

func TestExprJSON_MissingFieldPath(t *testing.T) {
	var e Expr
	err := json.Unmarshal([]byte(`{"type":"field","comparison":"eq","value":"a"}`), &e)
	if err == nil {
		t.Errorf("Unmarshal() error = nil, want missing field path error")
	}
}
