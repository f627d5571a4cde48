package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// updateExpr is a ready-to-send UpdateItem expression.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts set (always written) and defaults (written only when
// the stored item lacks the attribute) into one SET expression. Keys are sorted
// so the same input always yields the same placeholders. A key present in both
// maps is written unconditionally.
func buildUpdateExpr(set, defaults map[string]interface{}) (updateExpr, error) {
	ue := updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	var clauses []string
	i := 0

	add := func(field string, value interface{}, onlyIfAbsent bool) error {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal field %s: %w", field, err)
		}
		ue.Names[nameKey] = field
		ue.Values[valueKey] = av
		if onlyIfAbsent {
			clauses = append(clauses, fmt.Sprintf("%s = if_not_exists(%s, %s)", nameKey, nameKey, valueKey))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
		}
		i++
		return nil
	}

	for _, k := range sortedKeys(set) {
		if err := add(k, set[k], false); err != nil {
			return updateExpr{}, err
		}
	}
	for _, k := range sortedKeys(defaults) {
		if _, overridden := set[k]; overridden {
			continue
		}
		if err := add(k, defaults[k], true); err != nil {
			return updateExpr{}, err
		}
	}
	if i == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
	}
	ue.Expr = "SET " + strings.Join(clauses, ", ")
	return ue, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
