package dynamox_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	. "github.com/dogmatiq/propertykit/driver/aws/internal/dynamox"
)

func TestAttrAs(t *testing.T) {
	item := map[string]types.AttributeValue{
		"K": &types.AttributeValueMemberB{Value: []byte("<key>")},
		"S": &types.AttributeValueMemberS{Value: "<keyspace>"},
	}

	t.Run("it returns the attribute", func(t *testing.T) {
		v, err := AttrAs[*types.AttributeValueMemberB](item, "K")
		if err != nil {
			t.Fatal(err)
		}

		if string(v.Value) != "<key>" {
			t.Fatalf("unexpected value: %q", v.Value)
		}
	})

	t.Run("it returns an error if the attribute is missing", func(t *testing.T) {
		if _, err := AttrAs[*types.AttributeValueMemberB](item, "V"); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("it returns an error if the attribute has a different type", func(t *testing.T) {
		if _, err := AttrAs[*types.AttributeValueMemberB](item, "S"); err == nil {
			t.Fatal("expected an error")
		}
	})
}
