package generator

var categories = []string{
	"Electronics", "Clothing", "Home & Garden", "Books", "Sports & Outdoors",
	"Health & Beauty", "Toys & Games", "Automotive", "Food & Beverages",
	"Office Supplies", "Jewelry", "Pet Supplies", "Tools & Hardware",
}

var brands = []string{
	"TechCorp", "StyleMax", "HomeComfort", "ReadMore", "SportsPro",
	"BeautyPlus", "PlayTime", "AutoParts Inc", "FreshTaste",
	"OfficeSpace", "GlamRock", "PetLove", "BuildIt",
}

var nouns = map[string][]string{
	"Electronics":       {"Smartphone", "Laptop", "Tablet", "Headphones", "Smart Watch", "Camera", "Speaker", "Keyboard", "Mouse", "Monitor"},
	"Clothing":          {"T-Shirt", "Jeans", "Dress", "Jacket", "Sweater", "Shoes", "Hat", "Scarf", "Gloves", "Socks"},
	"Home & Garden":     {"Sofa", "Table", "Chair", "Lamp", "Vase", "Plant Pot", "Curtains", "Rug", "Picture Frame", "Candle"},
	"Books":             {"Novel", "Cookbook", "Biography", "Textbook", "Comic Book", "Poetry", "Self-Help", "History Book", "Science Fiction", "Mystery"},
	"Sports & Outdoors": {"Basketball", "Tennis Racket", "Running Shoes", "Yoga Mat", "Bicycle", "Camping Tent", "Backpack", "Water Bottle", "Fitness Tracker", "Dumbbells"},
	"Health & Beauty":   {"Face Cream", "Shampoo", "Lipstick", "Perfume", "Vitamins", "Moisturizer", "Sunscreen", "Hair Dryer", "Makeup Brush", "Nail Polish"},
	"Toys & Games":      {"Action Figure", "Board Game", "Puzzle", "Doll", "RC Car", "Building Blocks", "Card Game", "Video Game", "Stuffed Animal", "Art Supplies"},
	"Automotive":        {"Car Battery", "Oil Filter", "Brake Pads", "Tire", "Car Cover", "Floor Mats", "Air Freshener", "GPS Navigation", "Phone Mount", "Jump Starter"},
	"Food & Beverages":  {"Organic Coffee", "Green Tea", "Protein Bar", "Olive Oil", "Honey", "Pasta", "Rice", "Spices", "Chocolate", "Wine"},
	"Office Supplies":   {"Pen", "Notebook", "Stapler", "Paper Clips", "Folder", "Printer Paper", "Desk Organizer", "Calculator", "Scissors", "Tape"},
	"Jewelry":           {"Necklace", "Ring", "Bracelet", "Earrings", "Watch", "Brooch", "Cufflinks", "Pendant", "Chain", "Anklet"},
	"Pet Supplies":      {"Dog Food", "Cat Toy", "Pet Bed", "Leash", "Collar", "Fish Tank", "Bird Cage", "Pet Carrier", "Grooming Brush", "Litter Box"},
	"Tools & Hardware":  {"Hammer", "Screwdriver", "Drill", "Saw", "Wrench", "Pliers", "Level", "Measuring Tape", "Nails", "Screws"},
}

var colors = []string{
	"Red", "Blue", "Green", "Black", "White", "Gray", "Yellow", "Pink",
	"Purple", "Orange", "Brown", "Navy", "Beige", "Silver", "Gold",
}

var sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "One Size", "Small", "Medium", "Large"}

var statuses = []string{"Available", "Out of Stock", "Limited Stock", "Discontinued", "Pre-order"}

var adjectives = []string{"Premium", "High-quality", "Durable", "Innovative", "Stylish", "Comfortable", "Reliable", "Advanced"}

var features = []string{"easy to use", "long-lasting", "versatile", "ergonomic", "eco-friendly", "cutting-edge", "user-friendly", "efficient"}
