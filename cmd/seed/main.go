// Seeds the database with the demo account and the blueprint catalog.
// Blueprints are operator-authored: this seeder is the trusted path that
// puts generator sources into the database.
package main

import (
	"context"
	"errors"
	"log"

	_ "embed"

	"overmind/internal/common"
	"overmind/internal/common/security"
	"overmind/internal/domain/model"
	"overmind/internal/domain/repository"
	"overmind/internal/platform/config"
	"overmind/internal/platform/database"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

//go:embed schema.sql
var schemaSQL string

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		log.Fatalf("Error applying schema: %v", err)
	}
	log.Println("Schema applied.")

	userRepo := repository.NewPgUserRepository(db)
	blueprintRepo := repository.NewPgBlueprintRepository(db)

	seedUser(ctx, userRepo)
	seedBlueprints(ctx, blueprintRepo)

	log.Println("Database has been seeded.")
}

func seedUser(ctx context.Context, userRepo repository.UserRepository) {
	const email = "theo@overmind.xyz"

	// Cleanup the existing demo user; cascades remove credential, profile,
	// challenges and logs.
	if err := userRepo.DeleteByEmail(ctx, email); err != nil && !errors.Is(err, common.ErrNotFound) {
		log.Fatalf("Error removing existing seed user: %v", err)
	}

	hash, err := security.HashPassword("overmind")
	if err != nil {
		log.Fatalf("Error hashing seed password: %v", err)
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Email: email,
		Profile: &model.Profile{
			Firstname: "Theodore",
			Lastname:  "Garson",
			Pseudonym: "theodoregc",
			Country:   "Singapore",
			Rank:      model.RankFive,
		},
	}
	if err := userRepo.Create(ctx, user, hash); err != nil {
		log.Fatalf("Error creating seed user: %v", err)
	}
	log.Printf("Seed user %s created.", email)
}

func seedBlueprints(ctx context.Context, blueprintRepo repository.BlueprintRepository) {
	for _, b := range blueprintCatalog {
		blueprint := &model.Blueprint{
			ID:                uuid.NewString(),
			Title:             b.title,
			Slug:              slug.Make(b.title),
			Description:       b.description,
			Difficulty:        b.difficulty,
			InputGenerator:    b.inputGenerator,
			SolutionGenerator: b.solutionGenerator,
		}
		err := blueprintRepo.Create(ctx, blueprint)
		if err != nil {
			if errors.Is(err, common.ErrConflict) {
				log.Printf("Blueprint %q already seeded, skipping.", b.title)
				continue
			}
			log.Fatalf("Error creating blueprint %q: %v", b.title, err)
		}
		log.Printf("Blueprint %q created.", b.title)
	}
}

type blueprintSeed struct {
	title             string
	description       string
	difficulty        model.BlueprintDifficulty
	inputGenerator    string
	solutionGenerator string
}

var blueprintCatalog = []blueprintSeed{
	{
		title: "The Sum Challenge",
		description: "In this challenge, you'll be given two randomly generated integer values between 1 and 1000. " +
			"Your task is to add these two numbers together to find the solution. Each user will receive their own " +
			"unique set of input values, so no two solutions will be the same. Put your math skills to the test and " +
			"see if you can find the correct answer to the sum challenge!",
		difficulty: model.DifficultyEasy,
		inputGenerator: `() => {
  const min = 1;
  const max = 1000;
  const num1 = Math.floor(Math.random() * (max - min + 1) + min);
  const num2 = Math.floor(Math.random() * (max - min + 1) + min);

  return [num1, num2];
}`,
		solutionGenerator: `(input) => input.reduce((acc, num) => acc + num, 0)`,
	},
	{
		title: "The Sorting Challenge",
		description: "In this challenge, you'll be given 500 randomly generated integer values between 1 and 1000, " +
			"separated by a single space. Your task is to sort these numbers in descending order and return the " +
			"integer located in the 300th position as your solution. Each user will receive their own unique set of " +
			"input values, so no two solutions will be the same. Test your sorting skills and see if you can find " +
			"the correct answer to the sorting challenge!",
		difficulty: model.DifficultyMedium,
		inputGenerator: `() => {
  const inputs = [];

  for (let i = 0; i < 500; ++i) {
    inputs.push(Math.floor(Math.random() * 1000) + 1);
  }

  return inputs.join(" ");
}`,
		solutionGenerator: `(input) => {
  const inputs = input.split(" ").map((num) => parseInt(num));

  inputs.sort((a, b) => b - a);

  return inputs[299];
}`,
	},
	{
		title: "Converting Celsius to Fahrenheit",
		description: "Each user has a dynamically generated input value (integer between -100 and 100) (values are " +
			"randomly generated for each user). The user must convert the Celsius input to Fahrenheit to get their solution.",
		difficulty: model.DifficultyEasy,
		inputGenerator: `() => {
  const celsius = Math.floor(Math.random() * 201) - 100;

  return celsius;
}`,
		solutionGenerator: `(input) => {
  const celsius = Number(input);
  const fahrenheit = (celsius * 9) / 5 + 32;

  return fahrenheit;
}`,
	},
	{
		title: "Multiplying three integers",
		description: "Each user has three dynamically generated input values (integer between 1-100) (values are " +
			"randomly generated for each user). The user must multiply the input values to get their solution.",
		difficulty: model.DifficultyMedium,
		inputGenerator: `() => {
  const num1 = Math.floor(Math.random() * 100) + 1;
  const num2 = Math.floor(Math.random() * 100) + 1;
  const num3 = Math.floor(Math.random() * 100) + 1;

  return [num1, num2, num3];
}`,
		solutionGenerator: `(input) => input.reduce((acc, num) => acc * num, 1)`,
	},
	{
		title: "Prime Triplet Sum",
		description: "Find the sum of three prime numbers that add up to a given number. The three primes must be " +
			"unique and in ascending order.",
		difficulty: model.DifficultyHard,
		inputGenerator: `() => {
  const max = 3000;
  const sum = Math.floor(Math.random() * max) + 1;

  return sum;
}`,
		solutionGenerator: `(input) => {
  const isPrime = (num) => {
    for (let i = 2; i <= Math.sqrt(num); ++i) {
      if (num % i === 0) return false;
    }

    return num > 1;
  };

  let primeSum = 0;

  for (let i = 2; i < input / 3; ++i) {
    if (isPrime(i)) {
      for (let j = i + 1; j < input / 2; ++j) {
        if (isPrime(j)) {
          for (let k = j + 1; k < input; ++k) {
            if (isPrime(k) && i + j + k === input) {
              primeSum = i + j + k;
              return primeSum;
            }
          }
        }
      }
    }
  }
}`,
	},
}
