// Package mongo connects to MongoDB, the primary user record store.
//
// New and NewWithDatabase retry the initial ping so a cold Atlas cluster
// or a brief network hiccup does not fail startup. Healthcheck returns a
// probe for the readiness endpoint.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "")
//	if err != nil {
//		return err
//	}
//	users := db.Collection("users")
//
// Settings come from MONGO_URI, MONGO_DATABASE and the MONGO_* pool and
// retry variables described on Config.
package mongo
