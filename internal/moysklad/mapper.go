package moysklad

import (
	"strings"
	"time"
)

// Record is one normalized row ready for the upsert writer. ExternalID is the
// remote entity UUID; Fields hold local column names and already-scaled
// values. References to other entities stay as external-ID strings in
// *_external_id columns until the resolver pass rewrites them.
type Record struct {
	ExternalID string
	Fields     map[string]any
}

// stringField returns the string value under key, or "" when absent or of
// another type.
func stringField(row map[string]any, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func boolField(row map[string]any, key string) bool {
	if v, ok := row[key].(bool); ok {
		return v
	}
	return false
}

// floatField returns the numeric value under key, or 0 when absent. JSON
// decoding yields float64 for all numbers.
func floatField(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func mapField(row map[string]any, key string) map[string]any {
	if v, ok := row[key].(map[string]any); ok {
		return v
	}
	return nil
}

// ExtractID pulls the entity UUID out of a meta href, which ends in
// ".../entity/<type>/<uuid>". Returns "" for malformed input.
func ExtractID(meta map[string]any) string {
	href, ok := meta["href"].(string)
	if !ok || href == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// refID resolves a nested reference field to its external UUID. Expanded
// references carry their own "id"; unexpanded ones only a meta href.
func refID(row map[string]any, key string) any {
	ref := mapField(row, key)
	if ref == nil {
		return nil
	}
	if id, ok := ref["id"].(string); ok && id != "" {
		return id
	}
	if meta := mapField(ref, "meta"); meta != nil {
		if id := ExtractID(meta); id != "" {
			return id
		}
	}
	return nil
}

// refName returns the display name of a nested expanded reference.
func refName(row map[string]any, key string) any {
	ref := mapField(row, key)
	if ref == nil {
		return nil
	}
	if name, ok := ref["name"].(string); ok && name != "" {
		return name
	}
	return nil
}

// parseMoment parses a MoySklad timestamp ("2006-01-02 15:04:05.000" or
// without millis). Returns nil for empty or malformed values.
func parseMoment(value string) any {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05.000", momentLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return nil
}

// momentField parses a timestamp column off the raw row.
func momentField(row map[string]any, key string) any {
	return parseMoment(stringField(row, key))
}

// Price and unit scaling. MoySklad stores money in minor units (kopecks),
// weight in grams and volume in cubic millimeters.

func scalePrice(minor float64) float64  { return minor / 100 }
func scaleWeight(grams float64) float64 { return grams / 1000 }
func scaleVolume(mm3 float64) float64   { return mm3 / 1000000 }

// salePrice extracts the first sale price from the expanded salePrices array,
// converted to major units. Nil when the row carries no sale prices, so the
// nullable price column stays null instead of collapsing to zero.
func salePrice(row map[string]any) any {
	prices, ok := row["salePrices"].([]any)
	if !ok || len(prices) == 0 {
		return nil
	}
	first, ok := prices[0].(map[string]any)
	if !ok {
		return nil
	}
	return scalePrice(floatField(first, "value"))
}

// buyPrice extracts the purchase price in major units, nil when absent.
func buyPrice(row map[string]any) any {
	bp := mapField(row, "buyPrice")
	if bp == nil {
		return nil
	}
	return scalePrice(floatField(bp, "value"))
}

func minPrice(row map[string]any) any {
	mp := mapField(row, "minPrice")
	if mp == nil {
		return nil
	}
	return scalePrice(floatField(mp, "value"))
}

// scaledField converts a numeric field with scale, nil when the key is absent
// or non-numeric. Used for nullable columns; non-nullable quantities use
// floatField and default to 0.
func scaledField(row map[string]any, key string, scale func(float64) float64) any {
	switch v := row[key].(type) {
	case float64:
		return scale(v)
	case int:
		return scale(float64(v))
	}
	return nil
}

// stamp marks a field map as freshly synced. Every mapper calls it last.
func stamp(fields map[string]any) map[string]any {
	fields["last_synced_at"] = time.Now().UTC()
	fields["sync_status"] = "synced"
	return fields
}

// newRecord builds a Record, skipping rows without an id.
func newRecord(row map[string]any, fields map[string]any) (Record, bool) {
	id := stringField(row, "id")
	if id == "" {
		return Record{}, false
	}
	return Record{ExternalID: id, Fields: stamp(fields)}, true
}

// MapProductFolder normalizes a product group row.
func MapProductFolder(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":               stringField(row, "name"),
		"code":               stringField(row, "code"),
		"path_name":          stringField(row, "pathName"),
		"archived":           boolField(row, "archived"),
		"parent_external_id": refID(row, "productFolder"),
	})
}

// MapUnitOfMeasure normalizes a uom row.
func MapUnitOfMeasure(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":        stringField(row, "name"),
		"code":        stringField(row, "code"),
		"description": stringField(row, "description"),
	})
}

// MapCurrency normalizes a currency row. Rate stays as-is, it is already a
// major-unit multiplier.
func MapCurrency(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":         stringField(row, "name"),
		"full_name":    stringField(row, "fullName"),
		"code":         stringField(row, "code"),
		"iso_code":     stringField(row, "isoCode"),
		"rate":         floatField(row, "rate"),
		"multiplicity": int(floatField(row, "multiplicity")),
		"is_indirect":  boolField(row, "indirect"),
		"is_default":   boolField(row, "default"),
		"archived":     boolField(row, "archived"),
	})
}

// MapCountry normalizes a country row.
func MapCountry(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":          stringField(row, "name"),
		"code":          stringField(row, "code"),
		"external_code": stringField(row, "externalCode"),
		"description":   stringField(row, "description"),
	})
}

// MapCounterparty normalizes a counterparty (customer or supplier) row.
// salesAmount arrives in kopecks like every other money field.
func MapCounterparty(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":           stringField(row, "name"),
		"code":           stringField(row, "code"),
		"legal_title":    stringField(row, "legalTitle"),
		"company_type":   stringField(row, "companyType"),
		"inn":            stringField(row, "inn"),
		"kpp":            stringField(row, "kpp"),
		"ogrn":           stringField(row, "ogrn"),
		"okpo":           stringField(row, "okpo"),
		"email":          stringField(row, "email"),
		"phone":          stringField(row, "phone"),
		"actual_address": stringField(row, "actualAddress"),
		"legal_address":  stringField(row, "legalAddress"),
		"archived":       boolField(row, "archived"),
		"shared":         boolField(row, "shared"),
		"sales_amount":   scalePrice(floatField(row, "salesAmount")),
		"description":    stringField(row, "description"),
	})
}

// MapProduct normalizes a product row. Prices arrive in kopecks, weight in
// grams and volume in cubic millimeters; all are converted here.
func MapProduct(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":                 stringField(row, "name"),
		"code":                 stringField(row, "code"),
		"article":              stringField(row, "article"),
		"description":          stringField(row, "description"),
		"archived":             boolField(row, "archived"),
		"shared":               boolField(row, "shared"),
		"sale_price":           salePrice(row),
		"buy_price":            buyPrice(row),
		"min_price":            minPrice(row),
		"weight":               scaledField(row, "weight", scaleWeight),
		"volume":               scaledField(row, "volume", scaleVolume),
		"barcode":              firstBarcode(row),
		"folder_external_id":   refID(row, "productFolder"),
		"unit_external_id":     refID(row, "uom"),
		"supplier_external_id": refID(row, "supplier"),
	})
}

func firstBarcode(row map[string]any) any {
	barcodes, ok := row["barcodes"].([]any)
	if !ok || len(barcodes) == 0 {
		return nil
	}
	bc, ok := barcodes[0].(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"ean13", "ean8", "code128", "gtin"} {
		if v, ok := bc[key].(string); ok && v != "" {
			return v
		}
	}
	return nil
}

// MapService normalizes a service row.
func MapService(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":               stringField(row, "name"),
		"code":               stringField(row, "code"),
		"description":        stringField(row, "description"),
		"archived":           boolField(row, "archived"),
		"shared":             boolField(row, "shared"),
		"sale_price":         salePrice(row),
		"buy_price":          buyPrice(row),
		"min_price":          minPrice(row),
		"folder_external_id": refID(row, "productFolder"),
		"unit_external_id":   refID(row, "uom"),
	})
}

// MapStore normalizes a warehouse row.
func MapStore(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":        stringField(row, "name"),
		"code":        stringField(row, "code"),
		"address":     stringField(row, "address"),
		"archived":    boolField(row, "archived"),
		"description": stringField(row, "description"),
	})
}

// MapStock normalizes one stock report row. The report has no row id of its
// own, so the external id is composed from the product and store ids.
// Quantities are already in stockkeeping units and are not scaled.
func MapStock(row map[string]any) (Record, bool) {
	productID := ExtractID(mapField(row, "meta"))
	if productID == "" {
		return Record{}, false
	}
	storeID := ""
	if store := mapField(row, "store"); store != nil {
		if meta := mapField(store, "meta"); meta != nil {
			storeID = ExtractID(meta)
		}
	}
	key := productID + "_default"
	var storeRef any
	if storeID != "" {
		key = productID + "_" + storeID
		storeRef = storeID
	}
	return Record{
		ExternalID: key,
		Fields: stamp(map[string]any{
			"product_external_id": productID,
			"store_external_id":   storeRef,
			"stock":               floatField(row, "stock"),
			"reserve":             floatField(row, "reserve"),
			"in_transit":          floatField(row, "inTransit"),
			"available":           floatField(row, "quantity"),
			"price":               scaledField(row, "price", scalePrice),
			"sale_price":          scaledField(row, "salePrice", scalePrice),
		}),
	}, true
}

// MapOrganization normalizes an own-organization row.
func MapOrganization(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":           stringField(row, "name"),
		"code":           stringField(row, "code"),
		"legal_title":    stringField(row, "legalTitle"),
		"inn":            stringField(row, "inn"),
		"kpp":            stringField(row, "kpp"),
		"ogrn":           stringField(row, "ogrn"),
		"okpo":           stringField(row, "okpo"),
		"email":          stringField(row, "email"),
		"phone":          stringField(row, "phone"),
		"legal_address":  stringField(row, "legalAddress"),
		"actual_address": stringField(row, "actualAddress"),
		"archived":       boolField(row, "archived"),
		"shared":         boolField(row, "shared"),
	})
}

// MapEmployee normalizes an employee row.
func MapEmployee(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"full_name":   stringField(row, "fullName"),
		"first_name":  stringField(row, "firstName"),
		"middle_name": stringField(row, "middleName"),
		"last_name":   stringField(row, "lastName"),
		"code":        stringField(row, "code"),
		"email":       stringField(row, "email"),
		"phone":       stringField(row, "phone"),
		"position":    stringField(row, "position"),
		"archived":    boolField(row, "archived"),
		"shared":      boolField(row, "shared"),
	})
}

// MapProject normalizes a project row.
func MapProject(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":        stringField(row, "name"),
		"code":        stringField(row, "code"),
		"description": stringField(row, "description"),
		"archived":    boolField(row, "archived"),
		"shared":      boolField(row, "shared"),
	})
}

// MapContract normalizes a contract row. Sum arrives in kopecks.
func MapContract(row map[string]any) (Record, bool) {
	return newRecord(row, map[string]any{
		"name":                     stringField(row, "name"),
		"code":                     stringField(row, "code"),
		"description":              stringField(row, "description"),
		"contract_type":            stringField(row, "contractType"),
		"sum_amount":               scalePrice(floatField(row, "sum")),
		"reward_percent":           floatField(row, "rewardPercent"),
		"reward_type":              stringField(row, "rewardType"),
		"moment":                   momentField(row, "moment"),
		"archived":                 boolField(row, "archived"),
		"shared":                   boolField(row, "shared"),
		"counterparty_external_id": refID(row, "agent"),
		"organization_external_id": refID(row, "ownAgent"),
		"project_external_id":      refID(row, "project"),
	})
}

// MapSalesDocument normalizes one sales document row (customer order, demand
// or outgoing invoice). docType distinguishes them in the shared table.
func MapSalesDocument(row map[string]any, docType string) (Record, bool) {
	fields := documentFields(row, docType)
	fields["shipped_sum"] = scalePrice(floatField(row, "shippedSum"))
	fields["project_external_id"] = refID(row, "project")
	return newRecord(row, fields)
}

// MapPurchaseDocument normalizes one purchase document row (purchase order,
// supply or incoming invoice).
func MapPurchaseDocument(row map[string]any, docType string) (Record, bool) {
	return newRecord(row, documentFields(row, docType))
}

func documentFields(row map[string]any, docType string) map[string]any {
	return map[string]any{
		"document_type":            docType,
		"name":                     stringField(row, "name"),
		"number":                   stringField(row, "name"),
		"moment":                   momentField(row, "moment"),
		"sum_total":                scalePrice(floatField(row, "sum")),
		"payed_sum":                scalePrice(floatField(row, "payedSum")),
		"vat_sum":                  scalePrice(floatField(row, "vatSum")),
		"applicable":               boolField(row, "applicable"),
		"shared":                   boolField(row, "shared"),
		"state":                    refName(row, "state"),
		"description":              stringField(row, "description"),
		"counterparty_external_id": refID(row, "agent"),
		"organization_external_id": refID(row, "organization"),
		"store_external_id":        refID(row, "store"),
	}
}

// MapStockMovement normalizes one stock movement document row (enter, loss,
// move or inventory). Moves carry source and target stores instead of a
// single store reference.
func MapStockMovement(row map[string]any, docType string) (Record, bool) {
	fields := map[string]any{
		"document_type": docType,
		"name":          stringField(row, "name"),
		"moment":        momentField(row, "moment"),
		"sum_total":     scalePrice(floatField(row, "sum")),
		"applicable":    boolField(row, "applicable"),
		"description":   stringField(row, "description"),
	}
	if docType == "move" {
		fields["source_store_external_id"] = refID(row, "sourceStore")
		fields["target_store_external_id"] = refID(row, "targetStore")
	} else {
		fields["store_external_id"] = refID(row, "store")
	}
	return newRecord(row, fields)
}
