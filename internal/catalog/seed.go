package catalog

import "github.com/iliyamo/kit-rental/internal/model"

var defaultKits = []model.Kit{
	{
		ID:          "camp-starter",
		Name:        "Camp Starter",
		Price:       "₹1,500 / night",
		Description: "Everything two people need for a first night under the stars.",
		Items:       []string{"2-person dome tent", "2 sleeping bags", "2 foam mats", "Headlamp"},
		Activities:  []model.ActivityType{model.ActivityCamping, model.ActivityLakeside},
		Features:    []string{"Sets up in 10 minutes", "Rated to 5°C"},
	},
	{
		ID:          "family-basecamp",
		Name:        "Family Basecamp",
		Price:       "₹3,200 / night",
		Description: "A roomy cabin tent with a kitchen corner for families of four.",
		Items:       []string{"6-person cabin tent", "4 sleeping bags", "Camp stove", "Cookset", "Folding table"},
		Activities:  []model.ActivityType{model.ActivityCamping, model.ActivityLakeside},
		Features:    []string{"Standing height", "Rainfly included"},
	},
	{
		ID:          "trek-lite",
		Name:        "Trek Lite",
		Price:       "₹1,200 / night",
		Description: "Ultralight gear for multi-day Himalayan treks.",
		Items:       []string{"1-person tunnel tent", "Down sleeping bag", "Trekking poles", "Water filter"},
		Activities:  []model.ActivityType{model.ActivityTrekking},
		Features:    []string{"Under 3 kg packed"},
	},
	{
		ID:          "beach-day",
		Name:        "Beach Day",
		Price:       "₹900 / night",
		Description: "Shade, seating and a cooler for a long day by the sea.",
		Items:       []string{"Beach tent", "2 loungers", "Cooler box", "Beach mat"},
		Activities:  []model.ActivityType{model.ActivityBeach},
	},
	{
		ID:          "snow-ready",
		Name:        "Snow Ready",
		Price:       "₹2,800 / night",
		Description: "Four-season shelter and insulation for winter camps.",
		Items:       []string{"4-season tent", "2 sleeping bags rated -10°C", "Insulated mats", "Snow stakes"},
		Activities:  []model.ActivityType{model.ActivityWinter, model.ActivityTrekking},
		Features:    []string{"Wind rated to 80 km/h"},
	},
	{
		ID:          "festival-pod",
		Name:        "Festival Pod",
		Price:       "₹1,800 / night",
		Description: "A quick-pitch pod with power and lights for music festivals.",
		Items:       []string{"Pop-up tent", "2 air beds", "Power bank", "Fairy lights"},
		Activities:  []model.ActivityType{model.ActivityEvent},
	},
}

var defaultAddOns = []model.AddOn{
	{ID: "camp-chair", Name: "Camp Chair", Price: model.Rupees(150), PriceType: model.PerItem, Category: model.CategoryComfortUtility},
	{ID: "extra-sleeping-bag", Name: "Extra Sleeping Bag", Price: model.Rupees(250), PriceType: model.PerItem, Category: model.CategoryComfortUtility},
	{ID: "lantern", Name: "Lantern", Price: model.Rupees(100), PriceType: model.PerNight, Category: model.CategoryLightingAmbience},
	{ID: "fairy-lights", Name: "Fairy Lights", Price: model.Rupees(80), PriceType: model.PerNight, Category: model.CategoryLightingAmbience},
	{ID: "action-camera", Name: "Action Camera", Price: model.Rupees(600), PriceType: model.PerNight, Category: model.CategoryEntertainmentTech},
	{ID: "bluetooth-speaker", Name: "Bluetooth Speaker", Price: model.Rupees(200), PriceType: model.PerNight, Category: model.CategoryEntertainmentTech},
	{ID: "bbq-grill", Name: "BBQ Grill", Price: model.Rupees(400), PriceType: model.PerNight, Category: model.CategoryCookingFood},
	{ID: "marshmallow-pack", Name: "Marshmallow Pack", Price: model.Rupees(120), PriceType: model.PerItem, Category: model.CategoryCookingFood},
	{ID: "first-aid-kit", Name: "First Aid Kit", Price: model.Rupees(200), PriceType: model.PerItem, Category: model.CategorySafetyHealth},
	{ID: "board-games", Name: "Board Games Set", Price: model.Rupees(150), PriceType: model.PerNight, Category: model.CategoryGamesFun},
}
