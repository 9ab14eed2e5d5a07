// Package graphql exposes the menu listing as a read-only GraphQL query.
//
//	query {
//	  menuItems(pinCode: "560001", mealType: "lunch") {
//	    id name price foodMaker { businessName rating }
//	  }
//	}
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/tiffin/app/services"
	gqlserver "github.com/shashiranjanraj/tiffin/pkg/graphql"
	"github.com/shashiranjanraj/tiffin/pkg/middleware"
)

var errAuthRequired = errors.New("Authentication required")

var foodMakerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FoodMaker",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"businessName":    &graphql.Field{Type: graphql.String, Resolve: maker(func(m services.MenuFoodMaker) any { return m.BusinessName })},
		"rating":          &graphql.Field{Type: graphql.Float, Resolve: maker(func(m services.MenuFoodMaker) any { return m.Rating })},
		"totalOrders":     &graphql.Field{Type: graphql.Int, Resolve: maker(func(m services.MenuFoodMaker) any { return m.TotalOrders })},
		"preparationTime": &graphql.Field{Type: graphql.Int, Resolve: maker(func(m services.MenuFoodMaker) any { return m.PreparationTime })},
	},
})

var menuItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MenuItem",
	Fields: graphql.Fields{
		"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":              &graphql.Field{Type: graphql.String},
		"description":       &graphql.Field{Type: graphql.String},
		"price":             &graphql.Field{Type: graphql.Float, Resolve: item(func(v services.MenuItemView) any { return v.Price })},
		"imageUrl":          &graphql.Field{Type: graphql.String, Resolve: item(func(v services.MenuItemView) any { return v.ImageURL })},
		"dietaryPreference": &graphql.Field{Type: graphql.String, Resolve: item(func(v services.MenuItemView) any { return v.DietaryPreference })},
		"mealType":          &graphql.Field{Type: graphql.String, Resolve: item(func(v services.MenuItemView) any { return v.MealType })},
		"cuisineType":       &graphql.Field{Type: graphql.String, Resolve: item(func(v services.MenuItemView) any { return v.CuisineType })},
		"ingredients":       &graphql.Field{Type: graphql.String},
		"portionSize":       &graphql.Field{Type: graphql.String, Resolve: item(func(v services.MenuItemView) any { return v.PortionSize })},
		"preparationTime":   &graphql.Field{Type: graphql.Int, Resolve: item(func(v services.MenuItemView) any { return v.PreparationTime })},
		"foodMaker":         &graphql.Field{Type: foodMakerType, Resolve: item(func(v services.MenuItemView) any { return v.FoodMaker })},
	},
})

func item(get func(services.MenuItemView) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v, ok := p.Source.(services.MenuItemView)
		if !ok {
			return nil, nil
		}
		return get(v), nil
	}
}

func maker(get func(services.MenuFoodMaker) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		m, ok := p.Source.(services.MenuFoodMaker)
		if !ok {
			return nil, nil
		}
		return get(m), nil
	}
}

// NewSchema builds the query root over menu. Resolvers need an
// authenticated caller on the request context.
func NewSchema(menu *services.MenuService) (graphql.Schema, error) {
	str := &graphql.ArgumentConfig{Type: graphql.String}
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"menuItems": &graphql.Field{
				Type: graphql.NewList(menuItemType),
				Args: graphql.FieldConfigArgument{
					"pinCode":           str,
					"dietaryPreference": str,
					"mealType":          str,
					"cuisineType":       str,
					"search":            str,
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if _, ok := middleware.IdentityFromContext(p.Context); !ok {
						return nil, errAuthRequired
					}
					arg := func(name string) string {
						s, _ := p.Args[name].(string)
						return s
					}
					return menu.Items(p.Context, services.MenuFilter{
						PinCode:           arg("pinCode"),
						DietaryPreference: arg("dietaryPreference"),
						MealType:          arg("mealType"),
						CuisineType:       arg("cuisineType"),
						Search:            arg("search"),
					})
				},
			},
		},
	})
	return gqlserver.NewSchema(query)
}
