// Package schema inspects database tables and checks them against the
// tables of a registry:
//
//	result, err := schema.Check(ctx, client, registry.Tables(), schema.StrictNullability())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result)
//
// Check only reads the database catalog. Creating or altering tables is
// left to the application.
package schema
